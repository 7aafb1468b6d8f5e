package inventory

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// RELATIONSHIP RULES
// =============================================================================

// RelationshipRule auto-detects edges between asset pairs. Matches is
// evaluated for every ordered (source, target) pair of distinct assets.
type RelationshipRule struct {
	Name       string
	Priority   int
	Type       RelationshipType
	Strength   RelationshipStrength
	Confidence float64
	Matches    func(source, target *Asset) bool
}

// DefaultRelationshipRules returns the built-in detection rules:
// software depending on co-located hardware, and network peers on the
// same segment.
func DefaultRelationshipRules() []RelationshipRule {
	return []RelationshipRule{
		{
			Name:       "software_depends_on_colocated_hardware",
			Priority:   10,
			Type:       RelDependsOn,
			Strength:   StrengthMedium,
			Confidence: 0.8,
			Matches: func(source, target *Asset) bool {
				return source.AssetType == TypeSoftware &&
					target.AssetType == TypeHardware &&
					sameLocation(source, target)
			},
		},
		{
			Name:       "network_segment_peers",
			Priority:   20,
			Type:       RelConnectedTo,
			Strength:   StrengthMedium,
			Confidence: 0.9,
			Matches: func(source, target *Asset) bool {
				return sameNetworkSegment(source, target)
			},
		},
	}
}

func sameLocation(a, b *Asset) bool {
	return a.Location != nil && b.Location != nil && *a.Location == *b.Location
}

func sameNetworkSegment(a, b *Asset) bool {
	return a.NetworkInfo != nil && b.NetworkInfo != nil &&
		a.NetworkInfo.NetworkSegment != "" &&
		a.NetworkInfo.NetworkSegment == b.NetworkInfo.NetworkSegment
}

func bothHaveIPs(a, b *Asset) bool {
	return a.NetworkInfo != nil && b.NetworkInfo != nil &&
		a.NetworkInfo.IPAddress != "" && b.NetworkInfo.IPAddress != ""
}

// =============================================================================
// MAPPER
// =============================================================================

// Mapper discovers relationships through four independent passes whose
// outputs are concatenated and then deduplicated
type Mapper struct {
	rules []RelationshipRule
}

// NewMapper creates a mapper with the default rule set
func NewMapper() *Mapper {
	return &Mapper{rules: DefaultRelationshipRules()}
}

// NewMapperWithRules creates a mapper with custom rules
func NewMapperWithRules(rules []RelationshipRule) *Mapper {
	return &Mapper{rules: rules}
}

// MapRelationships runs all passes over the asset set plus any explicit
// relationship worksheet rows, then deduplicates. The dedup key is the
// unordered (source, target) id pair: two opposite-direction edges between
// the same assets collapse to whichever was produced first.
func (m *Mapper) MapRelationships(assets []Asset, explicitRows []map[string]string) []AssetRelationship {
	var edges []AssetRelationship
	edges = append(edges, m.parseExplicitRows(explicitRows)...)
	edges = append(edges, m.applyRules(assets)...)
	edges = append(edges, m.topologyPass(assets)...)
	edges = append(edges, m.dependencyHeuristic(assets)...)
	return dedupe(edges, assets)
}

// =============================================================================
// PASS 1: EXPLICIT WORKSHEET ROWS
// =============================================================================

func (m *Mapper) parseExplicitRows(rows []map[string]string) []AssetRelationship {
	var edges []AssetRelationship
	for i, row := range rows {
		source := getField(row, "source_asset_id", "Source Asset ID", "From Asset", "Source")
		target := getField(row, "target_asset_id", "Target Asset ID", "To Asset", "Target")
		if source == "" || target == "" {
			log.Printf("[relationship-mapper] explicit row %d missing source or target, skipped", i)
			continue
		}
		edges = append(edges, AssetRelationship{
			ID:            uuid.NewString(),
			SourceAssetID: source,
			TargetAssetID: target,
			Type:          ParseRelationshipType(getField(row, "relationship_type", "Relationship Type", "Type")),
			Description:   getField(row, "description", "Description"),
			Strength:      ParseRelationshipStrength(getField(row, "strength", "Strength")),
		})
	}
	return edges
}

// =============================================================================
// PASS 2: RULE-BASED DETECTION
// =============================================================================

func (m *Mapper) applyRules(assets []Asset) []AssetRelationship {
	var edges []AssetRelationship
	for i := range assets {
		for j := range assets {
			if i == j {
				continue
			}
			source, target := &assets[i], &assets[j]
			for _, rule := range m.rules {
				if !rule.Matches(source, target) {
					continue
				}
				edges = append(edges, AssetRelationship{
					ID:            uuid.NewString(),
					SourceAssetID: source.AssetID,
					TargetAssetID: target.AssetID,
					Type:          rule.Type,
					Strength:      rule.Strength,
					Description:   fmt.Sprintf("auto-detected by rule %s", rule.Name),
					Attributes: map[string]string{
						"rule":       rule.Name,
						"confidence": fmt.Sprintf("%.2f", rule.Confidence),
					},
				})
				if rule.Type.IsBidirectional() {
					edges = append(edges, AssetRelationship{
						ID:            uuid.NewString(),
						SourceAssetID: target.AssetID,
						TargetAssetID: source.AssetID,
						Type:          rule.Type,
						Strength:      rule.Strength,
						Description:   fmt.Sprintf("reverse of rule %s", rule.Name),
						Attributes: map[string]string{
							"rule":       rule.Name,
							"confidence": fmt.Sprintf("%.2f", rule.Confidence),
						},
					})
				}
			}
		}
	}
	return edges
}

// =============================================================================
// PASS 3: NETWORK TOPOLOGY CO-MEMBERSHIP
// =============================================================================

func (m *Mapper) topologyPass(assets []Asset) []AssetRelationship {
	segments := make(map[string][]*Asset)
	for i := range assets {
		asset := &assets[i]
		if asset.NetworkInfo != nil && asset.NetworkInfo.NetworkSegment != "" {
			segment := asset.NetworkInfo.NetworkSegment
			segments[segment] = append(segments[segment], asset)
		}
	}

	var edges []AssetRelationship
	for segment, members := range segments {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				edges = append(edges, AssetRelationship{
					ID:            uuid.NewString(),
					SourceAssetID: members[i].AssetID,
					TargetAssetID: members[j].AssetID,
					Type:          RelConnectedTo,
					Strength:      StrengthMedium,
					Description:   "shared network segment",
					Attributes:    map[string]string{"network_segment": segment},
				})
			}
		}
	}
	return edges
}

// =============================================================================
// PASS 4: TYPE-BASED DEPENDENCY HEURISTIC
// =============================================================================

func (m *Mapper) dependencyHeuristic(assets []Asset) []AssetRelationship {
	var edges []AssetRelationship
	for i := range assets {
		if assets[i].AssetType != TypeSoftware {
			continue
		}
		for j := range assets {
			if assets[j].AssetType != TypeHardware {
				continue
			}
			software, hardware := &assets[i], &assets[j]
			if !sameLocation(software, hardware) &&
				!sameNetworkSegment(software, hardware) &&
				!bothHaveIPs(software, hardware) {
				continue
			}
			edges = append(edges, AssetRelationship{
				ID:            uuid.NewString(),
				SourceAssetID: software.AssetID,
				TargetAssetID: hardware.AssetID,
				Type:          RelDependsOn,
				Strength:      StrengthStrong,
				Description:   "software/hardware dependency heuristic",
			})
		}
	}
	return edges
}

// =============================================================================
// DEDUPLICATION
// =============================================================================

// dedupe drops edges referencing assets absent from the final set and
// collapses duplicates on the unordered (source, target) pair; the first
// occurrence wins, which also erases direction when opposite edges exist.
func dedupe(edges []AssetRelationship, assets []Asset) []AssetRelationship {
	present := make(map[string]bool, len(assets))
	for i := range assets {
		present[assets[i].AssetID] = true
	}

	seen := make(map[string]bool, len(edges))
	var out []AssetRelationship
	for _, edge := range edges {
		if !present[edge.SourceAssetID] || !present[edge.TargetAssetID] {
			continue
		}
		key := pairKey(edge.SourceAssetID, edge.TargetAssetID)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, edge)
	}
	return out
}

func pairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
