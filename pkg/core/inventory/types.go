// Package inventory - Asset and relationship domain model
// Converts raw spreadsheet row maps into structured assets and discovers
// the relationship edges between them.
package inventory

import (
	"strings"
	"time"
)

// =============================================================================
// ASSET ENUMS
// =============================================================================

// AssetType is the coarse classification of an inventoried item
type AssetType string

const (
	TypeHardware AssetType = "hardware"
	TypeSoftware AssetType = "software"
	TypeNetwork  AssetType = "network"
	TypeVirtual  AssetType = "virtual"
	TypeData     AssetType = "data"
	TypeCloud    AssetType = "cloud"
	TypeService  AssetType = "service"
)

// AssetCategory is the fine-grained classification assigned by the
// categorization rules
type AssetCategory string

const (
	CategoryServer           AssetCategory = "server"
	CategoryWorkstation      AssetCategory = "workstation"
	CategoryStorageDevice    AssetCategory = "storage_device"
	CategoryNetworkDevice    AssetCategory = "network_device"
	CategorySecurityDevice   AssetCategory = "security_device"
	CategoryRouter           AssetCategory = "router"
	CategorySwitch           AssetCategory = "switch"
	CategoryFirewall         AssetCategory = "firewall"
	CategoryLoadBalancer     AssetCategory = "load_balancer"
	CategoryApplication      AssetCategory = "application"
	CategoryOperatingSystem  AssetCategory = "operating_system"
	CategoryDatabase         AssetCategory = "database"
	CategoryMiddleware       AssetCategory = "middleware"
	CategoryVirtualMachine   AssetCategory = "virtual_machine"
	CategoryContainer        AssetCategory = "container"
	CategoryDatabaseInstance AssetCategory = "database_instance"
	CategoryComputeInstance  AssetCategory = "compute_instance"
	CategoryWebService       AssetCategory = "web_service"
)

// Environment identifies where an asset runs
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvQA          Environment = "qa"
	EnvDR          Environment = "disaster_recovery"
	EnvSandbox     Environment = "sandbox"
)

// Criticality is an ordered scale; Rank makes the ordering explicit
type Criticality string

const (
	CriticalityLow      Criticality = "low"
	CriticalityMedium   Criticality = "medium"
	CriticalityHigh     Criticality = "high"
	CriticalityCritical Criticality = "critical"
)

// Rank returns the position of a criticality on the Low<Medium<High<Critical scale
func (c Criticality) Rank() int {
	switch c {
	case CriticalityLow:
		return 0
	case CriticalityMedium:
		return 1
	case CriticalityHigh:
		return 2
	case CriticalityCritical:
		return 3
	}
	return -1
}

// =============================================================================
// ENRICHMENT DETAIL STRUCTS
// =============================================================================

// NetworkInfo holds network-facing attributes of an asset
type NetworkInfo struct {
	IPAddress      string `json:"ip_address,omitempty"`
	MACAddress     string `json:"mac_address,omitempty"`
	Hostname       string `json:"hostname,omitempty"`
	NetworkSegment string `json:"network_segment,omitempty"`
	VLAN           string `json:"vlan,omitempty"`
}

// SoftwareInfo holds software-specific attributes
type SoftwareInfo struct {
	Vendor      string `json:"vendor,omitempty"`
	Version     string `json:"version,omitempty"`
	LicenseType string `json:"license_type,omitempty"`
	InstallDate string `json:"install_date,omitempty"`
}

// HardwareInfo holds hardware-specific attributes
type HardwareInfo struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	CPU          string `json:"cpu,omitempty"`
	Memory       string `json:"memory,omitempty"`
}

// CloudInfo holds cloud-resource attributes
type CloudInfo struct {
	Provider     string `json:"provider,omitempty"`
	Region       string `json:"region,omitempty"`
	InstanceType string `json:"instance_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`
}

// =============================================================================
// ASSET
// =============================================================================

// Asset is the canonical entity for one inventoried item. AssetID is
// unique within the enclosing document; the type-specific info structs are
// populated only when that type's enrichment ran. Mutated in place during
// categorization and enrichment, never after being placed in the final
// document.
type Asset struct {
	AssetID          string            `json:"asset_id"`
	AssetName        string            `json:"asset_name"`
	AssetType        AssetType         `json:"asset_type"`
	AssetCategory    AssetCategory     `json:"asset_category"`
	Description      string            `json:"description,omitempty"`
	Owner            string            `json:"owner,omitempty"`
	Location         *string           `json:"location,omitempty"`
	Environment      Environment       `json:"environment"`
	Criticality      Criticality       `json:"criticality"`
	NetworkInfo      *NetworkInfo      `json:"network_info,omitempty"`
	SoftwareInfo     *SoftwareInfo     `json:"software_info,omitempty"`
	HardwareInfo     *HardwareInfo     `json:"hardware_info,omitempty"`
	CloudInfo        *CloudInfo        `json:"cloud_info,omitempty"`
	Relationships    []string          `json:"relationships,omitempty"`
	ComplianceStatus string            `json:"compliance_status,omitempty"`
	CustomAttributes map[string]string `json:"custom_attributes,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// =============================================================================
// RELATIONSHIPS
// =============================================================================

// RelationshipType classifies an edge between two assets
type RelationshipType string

const (
	RelDependsOn   RelationshipType = "depends_on"
	RelHosts       RelationshipType = "hosts"
	RelConnectedTo RelationshipType = "connected_to"
	RelManages     RelationshipType = "manages"
	RelMonitors    RelationshipType = "monitors"
	RelBacksUp     RelationshipType = "backs_up"
	RelReplicates  RelationshipType = "replicates"
	RelRelated     RelationshipType = "related"
)

// IsBidirectional reports whether an edge of this type implies its reverse
func (t RelationshipType) IsBidirectional() bool {
	return t == RelConnectedTo || t == RelRelated
}

// RelationshipStrength is an ordered scale for how firm an edge is
type RelationshipStrength string

const (
	StrengthWeak     RelationshipStrength = "weak"
	StrengthMedium   RelationshipStrength = "medium"
	StrengthStrong   RelationshipStrength = "strong"
	StrengthCritical RelationshipStrength = "critical"
)

// AssetRelationship is one edge. Source and target must reference assets
// present in the same document; dangling edges are dropped at aggregation
// time. Never mutated after creation, only filtered.
type AssetRelationship struct {
	ID            string               `json:"id"`
	SourceAssetID string               `json:"source_asset_id"`
	TargetAssetID string               `json:"target_asset_id"`
	Type          RelationshipType     `json:"relationship_type"`
	Description   string               `json:"description,omitempty"`
	Strength      RelationshipStrength `json:"strength"`
	Attributes    map[string]string    `json:"attributes,omitempty"`
}

// =============================================================================
// KEYWORD PARSERS
// =============================================================================

// ParseAssetType maps a free-text cell to an asset type; empty or
// unrecognized input falls back to hardware
func ParseAssetType(value string) AssetType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "hardware", "hw", "physical":
		return TypeHardware
	case "software", "sw", "application":
		return TypeSoftware
	case "network", "networking":
		return TypeNetwork
	case "virtual", "vm":
		return TypeVirtual
	case "data", "database":
		return TypeData
	case "cloud":
		return TypeCloud
	case "service", "saas":
		return TypeService
	}
	return TypeHardware
}

// ParseEnvironment maps a free-text cell to an environment
func ParseEnvironment(value string, fallback Environment) Environment {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "production", "prod", "live":
		return EnvProduction
	case "staging", "stage":
		return EnvStaging
	case "development", "dev":
		return EnvDevelopment
	case "test", "testing":
		return EnvTest
	case "qa", "quality assurance":
		return EnvQA
	case "dr", "disaster recovery", "disaster_recovery":
		return EnvDR
	case "sandbox":
		return EnvSandbox
	}
	return fallback
}

// ParseCriticality maps a free-text cell to a criticality level
func ParseCriticality(value string, fallback Criticality) Criticality {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critical", "severe":
		return CriticalityCritical
	case "high":
		return CriticalityHigh
	case "medium", "moderate":
		return CriticalityMedium
	case "low", "minimal":
		return CriticalityLow
	}
	return fallback
}

// ParseRelationshipType maps a free-text cell to a relationship type;
// unrecognized input defaults to related
func ParseRelationshipType(value string) RelationshipType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "depends on", "depends_on", "dependson", "depends":
		return RelDependsOn
	case "hosts", "hosted by", "hosting":
		return RelHosts
	case "connected to", "connected_to", "connects", "connected":
		return RelConnectedTo
	case "manages", "managed by":
		return RelManages
	case "monitors", "monitored by":
		return RelMonitors
	case "backs up", "backs_up", "backup":
		return RelBacksUp
	case "replicates", "replication":
		return RelReplicates
	}
	return RelRelated
}

// ParseRelationshipStrength maps a free-text cell to a strength;
// unrecognized input defaults to medium
func ParseRelationshipStrength(value string) RelationshipStrength {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "weak":
		return StrengthWeak
	case "strong":
		return StrengthStrong
	case "critical":
		return StrengthCritical
	case "medium", "moderate":
		return StrengthMedium
	}
	return StrengthMedium
}
