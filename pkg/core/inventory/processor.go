package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// PROCESSOR CONFIGURATION
// =============================================================================

// ProcessorConfig controls row-to-asset conversion
type ProcessorConfig struct {
	GenerateAssetIDs     bool              `yaml:"generate_asset_ids"`
	EnableCategorization bool              `yaml:"enable_categorization"`
	EnableEnrichment     bool              `yaml:"enable_enrichment"`
	DefaultEnvironment   Environment       `yaml:"default_environment"`
	DefaultCriticality   Criticality       `yaml:"default_criticality"`
	CustomFieldMappings  map[string]string `yaml:"custom_field_mappings"`
}

// DefaultProcessorConfig enables everything with production/medium defaults
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		GenerateAssetIDs:     true,
		EnableCategorization: true,
		EnableEnrichment:     true,
		DefaultEnvironment:   EnvProduction,
		DefaultCriticality:   CriticalityMedium,
	}
}

// =============================================================================
// FIELD FALLBACK CHAINS
// =============================================================================

// getField returns the first non-empty value among the candidate keys:
// canonical snake_case first, then the Title Case header, then synonyms.
func getField(row map[string]string, candidates ...string) string {
	for _, key := range candidates {
		if value, ok := row[key]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor converts raw row maps into assets
type Processor struct {
	config ProcessorConfig
}

// NewProcessor creates a processor with the given configuration
func NewProcessor(config ProcessorConfig) *Processor {
	return &Processor{config: config}
}

// ProcessRow builds one asset from a row map. Findings are warning-level
// observations; the error is reserved for hard validation failures
// (missing id with generation disabled, missing name).
func (p *Processor) ProcessRow(row map[string]string) (Asset, []string, error) {
	var findings []string

	assetID := getField(row, "asset_id", "Asset ID", "ID", "Identifier")
	if assetID == "" {
		if !p.config.GenerateAssetIDs {
			return Asset{}, findings, fmt.Errorf("row has no asset id and id generation is disabled")
		}
		assetID = GenerateAssetID()
		findings = append(findings, fmt.Sprintf("generated asset id %s", assetID))
	}

	name := getField(row, "asset_name", "Asset Name", "Name", "Device Name", "Hostname")
	if name == "" {
		name = "Asset " + assetID
		findings = append(findings, "asset name missing; derived from id")
	}

	now := time.Now().UTC()
	asset := Asset{
		AssetID:     assetID,
		AssetName:   name,
		AssetType:   ParseAssetType(getField(row, "asset_type", "Asset Type", "Type")),
		Description: getField(row, "description", "Description"),
		Owner:       getField(row, "owner", "Owner", "Responsible Party", "Responsible"),
		Environment: ParseEnvironment(getField(row, "environment", "Environment"), p.config.DefaultEnvironment),
		Criticality: ParseCriticality(getField(row, "criticality", "Criticality", "Criticality Level"), p.config.DefaultCriticality),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if location := getField(row, "location", "Location", "Physical Location", "Site"); location != "" {
		asset.Location = &location
	}

	if tags := getField(row, "tags", "Tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				asset.Tags = append(asset.Tags, trimmed)
			}
		}
	}

	for column, attribute := range p.config.CustomFieldMappings {
		if value := getField(row, column); value != "" {
			if asset.CustomAttributes == nil {
				asset.CustomAttributes = make(map[string]string)
			}
			asset.CustomAttributes[attribute] = value
		}
	}

	if p.config.EnableCategorization {
		asset.AssetCategory = Categorize(&asset)
	}
	if p.config.EnableEnrichment {
		p.enrich(&asset, row)
	}

	if err := validateAsset(&asset); err != nil {
		return Asset{}, findings, err
	}
	return asset, findings, nil
}

// GenerateAssetID produces a fresh 8-hex-character uppercase id
func GenerateAssetID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "asset_" + strings.ToUpper(raw[:8])
}

func validateAsset(asset *Asset) error {
	if strings.TrimSpace(asset.AssetID) == "" {
		return fmt.Errorf("asset has an empty id")
	}
	if strings.TrimSpace(asset.AssetName) == "" {
		return fmt.Errorf("asset %s has an empty name", asset.AssetID)
	}
	return nil
}

// =============================================================================
// ENRICHMENT
// =============================================================================

// enrich populates the type-specific detail structs, but only when the
// relevant source fields are present. Network info attaches to any asset;
// the others require a matching asset type.
func (p *Processor) enrich(asset *Asset, row map[string]string) {
	ip := getField(row, "ip_address", "IP Address", "IP")
	mac := getField(row, "mac_address", "MAC Address", "MAC")
	hostname := getField(row, "hostname", "Hostname", "Host Name")
	segment := getField(row, "network_segment", "Network Segment", "Subnet", "VLAN Name")
	vlan := getField(row, "vlan", "VLAN", "VLAN ID")
	if ip != "" || mac != "" || hostname != "" || segment != "" || vlan != "" {
		asset.NetworkInfo = &NetworkInfo{
			IPAddress:      ip,
			MACAddress:     mac,
			Hostname:       hostname,
			NetworkSegment: segment,
			VLAN:           vlan,
		}
	}

	if asset.AssetType == TypeSoftware {
		vendor := getField(row, "vendor", "Vendor", "Manufacturer", "Publisher")
		version := getField(row, "version", "Version")
		license := getField(row, "license_type", "License Type", "License")
		installed := getField(row, "install_date", "Install Date")
		if vendor != "" || version != "" || license != "" || installed != "" {
			asset.SoftwareInfo = &SoftwareInfo{
				Vendor:      vendor,
				Version:     version,
				LicenseType: license,
				InstallDate: installed,
			}
		}
	}

	if asset.AssetType == TypeHardware {
		manufacturer := getField(row, "manufacturer", "Manufacturer", "Vendor")
		model := getField(row, "model", "Model")
		serial := getField(row, "serial_number", "Serial Number", "Serial")
		cpu := getField(row, "cpu", "CPU", "Processor")
		memory := getField(row, "memory", "Memory", "RAM")
		if manufacturer != "" || model != "" || serial != "" || cpu != "" || memory != "" {
			asset.HardwareInfo = &HardwareInfo{
				Manufacturer: manufacturer,
				Model:        model,
				SerialNumber: serial,
				CPU:          cpu,
				Memory:       memory,
			}
		}
	}

	if asset.AssetType == TypeCloud {
		provider := getField(row, "cloud_provider", "Cloud Provider", "Provider")
		region := getField(row, "region", "Region")
		instanceType := getField(row, "instance_type", "Instance Type")
		resourceID := getField(row, "resource_id", "Resource ID", "ARN")
		if provider != "" || region != "" || instanceType != "" || resourceID != "" {
			asset.CloudInfo = &CloudInfo{
				Provider:     provider,
				Region:       region,
				InstanceType: instanceType,
				ResourceID:   resourceID,
			}
		}
	}
}
