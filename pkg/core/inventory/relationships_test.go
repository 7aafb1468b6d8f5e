package inventory

import "testing"

func testAsset(id string, assetType AssetType) Asset {
	return Asset{AssetID: id, AssetName: id, AssetType: assetType}
}

func TestExplicitRowsParsed(t *testing.T) {
	mapper := NewMapperWithRules(nil)
	assets := []Asset{testAsset("A", TypeHardware), testAsset("B", TypeHardware)}
	rows := []map[string]string{
		{
			"Source Asset ID":   "A",
			"Target Asset ID":   "B",
			"Relationship Type": "DependsOn",
			"Strength":          "strong",
			"Description":       "app tier",
		},
	}

	edges := mapper.MapRelationships(assets, rows)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	edge := edges[0]
	if edge.SourceAssetID != "A" || edge.TargetAssetID != "B" {
		t.Errorf("edge endpoints = %s -> %s", edge.SourceAssetID, edge.TargetAssetID)
	}
	if edge.Type != RelDependsOn || edge.Strength != StrengthStrong {
		t.Errorf("edge = %+v", edge)
	}
	if edge.ID == "" {
		t.Error("edge id missing")
	}
}

func TestOppositeDirectionEdgesCollapse(t *testing.T) {
	mapper := NewMapperWithRules(nil)
	assets := []Asset{testAsset("A", TypeHardware), testAsset("B", TypeHardware)}
	rows := []map[string]string{
		{"Source Asset ID": "A", "Target Asset ID": "B", "Relationship Type": "DependsOn"},
		{"Source Asset ID": "B", "Target Asset ID": "A", "Relationship Type": "ConnectedTo"},
	}

	edges := mapper.MapRelationships(assets, rows)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1 after unordered-pair dedup", len(edges))
	}
	// First occurrence wins.
	if edges[0].SourceAssetID != "A" || edges[0].Type != RelDependsOn {
		t.Errorf("surviving edge = %+v, want the first (A depends_on B)", edges[0])
	}
}

func TestDanglingEdgesDropped(t *testing.T) {
	mapper := NewMapperWithRules(nil)
	assets := []Asset{testAsset("A", TypeHardware)}
	rows := []map[string]string{
		{"Source Asset ID": "A", "Target Asset ID": "ghost"},
		{"Source Asset ID": "ghost", "Target Asset ID": "A"},
	}

	if edges := mapper.MapRelationships(assets, rows); len(edges) != 0 {
		t.Errorf("got %d edges, want 0: both reference an absent asset", len(edges))
	}
}

func TestExplicitRowMissingEndpointSkipped(t *testing.T) {
	mapper := NewMapperWithRules(nil)
	assets := []Asset{testAsset("A", TypeHardware), testAsset("B", TypeHardware)}
	rows := []map[string]string{
		{"Source Asset ID": "A"},
		{"Source Asset ID": "A", "Target Asset ID": "B"},
	}

	if edges := mapper.MapRelationships(assets, rows); len(edges) != 1 {
		t.Errorf("got %d edges, want 1: incomplete row must be skipped", len(edges))
	}
}

func TestColocationRule(t *testing.T) {
	location := "DC-East"
	app := testAsset("app", TypeSoftware)
	app.Location = &location
	host := testAsset("host", TypeHardware)
	host.Location = &location
	other := testAsset("other", TypeHardware)

	edges := NewMapper().MapRelationships([]Asset{app, host, other}, nil)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	edge := edges[0]
	if edge.SourceAssetID != "app" || edge.TargetAssetID != "host" || edge.Type != RelDependsOn {
		t.Errorf("edge = %+v, want app depends_on host", edge)
	}
}

func TestSegmentPeersAreDeduplicatedAcrossPasses(t *testing.T) {
	a := testAsset("A", TypeHardware)
	a.NetworkInfo = &NetworkInfo{NetworkSegment: "dmz"}
	b := testAsset("B", TypeHardware)
	b.NetworkInfo = &NetworkInfo{NetworkSegment: "dmz"}
	c := testAsset("C", TypeHardware)
	c.NetworkInfo = &NetworkInfo{NetworkSegment: "internal"}

	// The segment rule fires for (A,B) and (B,A), the bidirectional reverse
	// doubles each, and the topology pass adds the unordered pair again.
	// Dedup must leave exactly one edge.
	edges := NewMapper().MapRelationships([]Asset{a, b, c}, nil)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Type != RelConnectedTo {
		t.Errorf("edge type = %q, want connected_to", edges[0].Type)
	}
}

func TestDependencyHeuristicRequiresSharedContext(t *testing.T) {
	app := testAsset("app", TypeSoftware)
	app.NetworkInfo = &NetworkInfo{IPAddress: "10.0.0.1"}
	host := testAsset("host", TypeHardware)
	host.NetworkInfo = &NetworkInfo{IPAddress: "10.0.0.2"}
	isolated := testAsset("isolated", TypeHardware)

	edges := NewMapperWithRules(nil).MapRelationships([]Asset{app, host, isolated}, nil)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	edge := edges[0]
	if edge.SourceAssetID != "app" || edge.TargetAssetID != "host" {
		t.Errorf("edge endpoints = %s -> %s, want app -> host", edge.SourceAssetID, edge.TargetAssetID)
	}
	if edge.Type != RelDependsOn || edge.Strength != StrengthStrong {
		t.Errorf("edge = %+v, want strong depends_on", edge)
	}
}

func TestRelationshipTypeParsing(t *testing.T) {
	tests := []struct {
		in   string
		want RelationshipType
	}{
		{"Depends On", RelDependsOn},
		{"depends_on", RelDependsOn},
		{"ConnectedTo", RelRelated}, // no exact synonym; defaults
		{"connected to", RelConnectedTo},
		{"hosts", RelHosts},
		{"backup", RelBacksUp},
		{"", RelRelated},
		{"mystery", RelRelated},
	}
	for _, tt := range tests {
		if got := ParseRelationshipType(tt.in); got != tt.want {
			t.Errorf("ParseRelationshipType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBidirectionality(t *testing.T) {
	if !RelConnectedTo.IsBidirectional() || !RelRelated.IsBidirectional() {
		t.Error("connected_to and related are bidirectional")
	}
	if RelDependsOn.IsBidirectional() || RelHosts.IsBidirectional() {
		t.Error("depends_on and hosts are directional")
	}
}
