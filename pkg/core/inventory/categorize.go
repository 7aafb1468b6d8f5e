package inventory

import "strings"

// =============================================================================
// CATEGORIZATION RULES
// =============================================================================

// typeRules are checked first: per-type name keywords
var typeRules = map[AssetType][]struct {
	keyword  string
	category AssetCategory
}{
	TypeHardware: {
		{"server", CategoryServer},
		{"workstation", CategoryWorkstation},
		{"laptop", CategoryWorkstation},
		{"storage", CategoryStorageDevice},
	},
	TypeSoftware: {
		{"database", CategoryDatabase},
		{"windows", CategoryOperatingSystem},
		{"linux", CategoryOperatingSystem},
		{"middleware", CategoryMiddleware},
	},
	TypeNetwork: {
		{"router", CategoryRouter},
		{"switch", CategorySwitch},
		{"firewall", CategoryFirewall},
		{"load balancer", CategoryLoadBalancer},
	},
	TypeVirtual: {
		{"container", CategoryContainer},
	},
}

// keywordRules run over name plus description regardless of type
var keywordRules = []struct {
	keyword  string
	category AssetCategory
}{
	{"firewall", CategoryFirewall},
	{"security", CategorySecurityDevice},
	{"router", CategoryNetworkDevice},
	{"switch", CategoryNetworkDevice},
}

// typeDefaults close the cascade
var typeDefaults = map[AssetType]AssetCategory{
	TypeHardware: CategoryServer,
	TypeSoftware: CategoryApplication,
	TypeNetwork:  CategoryRouter,
	TypeVirtual:  CategoryVirtualMachine,
	TypeData:     CategoryDatabaseInstance,
	TypeCloud:    CategoryComputeInstance,
	TypeService:  CategoryWebService,
}

// Categorize assigns a fine-grained category: type-specific name rules
// first, then cross-type keyword rules over name and description, then
// the per-type default.
func Categorize(asset *Asset) AssetCategory {
	name := strings.ToLower(asset.AssetName)
	for _, rule := range typeRules[asset.AssetType] {
		if strings.Contains(name, rule.keyword) {
			return rule.category
		}
	}

	haystack := name + " " + strings.ToLower(asset.Description)
	for _, rule := range keywordRules {
		if strings.Contains(haystack, rule.keyword) {
			return rule.category
		}
	}

	if category, ok := typeDefaults[asset.AssetType]; ok {
		return category
	}
	return CategoryServer
}
