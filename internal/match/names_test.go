package match

import "testing"

func TestNormaliseStopName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"TRAFALGAR SQUARE / CHARING CROSS STATION <> # [DLR] >T<", "TRAFALGARSQCHARINGCROSSSTN"},
		{"Trafalgar Square", "TRAFALGARSQ"},
		{"The Angel Islington", "ANGELISLINGTON"},
		{"Baker Street Station", "BAKERSTSTN"},
		{"Kings Road / Sloane Square", "KINGSRDSLOANESQ"},
		{"Red Lion Public House", "REDLIONPUB"},
		{"Northumberland Avenue", "NORTHUMBERLANDAVE"},
		{"Theobalds Road", "THEOBALDSRD"},
		{"Café Royal", "CAFEROYAL"},
		{"[dlr] Canary Wharf", "CANARYWHARF"},
	}
	for _, tt := range tests {
		if got := NormaliseStopName(tt.in); got != tt.want {
			t.Errorf("NormaliseStopName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormaliseStopName_Idempotent(t *testing.T) {
	inputs := []string{
		"TRAFALGAR SQUARE / CHARING CROSS STATION <> # [DLR] >T<",
		"The Angel Islington",
		"Victoria Bus Station",
		"Red Lion Public House",
		"St. John's Wood Road",
	}
	for _, in := range inputs {
		once := NormaliseStopName(in)
		if twice := NormaliseStopName(once); twice != once {
			t.Errorf("NormaliseStopName(NormaliseStopName(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestStopNameSimilarity(t *testing.T) {
	tests := []struct {
		name        string
		query, stop string
		want        int
	}{
		{"exact after normalising", "trafalgar square", "TRAFALGAR SQUARE", 100},
		{"exact ignoring pictograms", "Charing Cross Station", "CHARING CROSS STATION <> #", 100},
		{"station query at start", "Victoria Station", "VICTORIA STATION / TERMINUS PLACE", 95},
		{"station query at end", "Bus Station", "VICTORIA BUS STATION", 94},
		{"station implied at start", "Oxford Circus", "OXFORD CIRCUS STATION", 91},
		{"bus station implied at start", "Walthamstow", "WALTHAMSTOW BUS STATION", 91},
		{"station implied at end", "Liverpool Street", "LONDON LIVERPOOL STREET STATION", 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StopNameSimilarity(tt.query, tt.stop); got != tt.want {
				t.Errorf("StopNameSimilarity(%q, %q) = %d, want %d", tt.query, tt.stop, got, tt.want)
			}
		})
	}
}

func TestStopNameSimilarity_FallsBackToRatio(t *testing.T) {
	got := StopNameSimilarity("Parliament Sq", "PARLIAMENT SQUARE")
	if got != 100 {
		t.Errorf("StopNameSimilarity(abbreviated) = %d, want 100", got)
	}
	got = StopNameSimilarity("Parliment Square", "PARLIAMENT SQUARE")
	if got < 85 || got >= 100 {
		t.Errorf("StopNameSimilarity(misspelt) = %d, want in [85, 100)", got)
	}
	got = StopNameSimilarity("Oxford Circus", "ZZZZ")
	if got != 0 {
		t.Errorf("StopNameSimilarity(unrelated) = %d, want 0", got)
	}
}

func TestStationNameSimilarity(t *testing.T) {
	tests := []struct {
		name           string
		query, station string
		wantMin        int
		wantMax        int
	}{
		{"exact", "Oxford Circus", "Oxford Circus", 100, 100},
		{"case folded", "oxford circus", "Oxford Circus", 100, 100},
		{"abbreviated prefix", "Kings Cross", "King's Cross St. Pancras", 90, 99},
		{"full name misspelt", "Picadilly Circus", "Piccadilly Circus", 90, 99},
		{"unrelated", "Morden", "High Barnet", 0, 69},
		{"bare prefix capped below exact", "Ken", "Kensington (Olympia)", 99, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StationNameSimilarity(tt.query, tt.station)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("StationNameSimilarity(%q, %q) = %d, want in [%d, %d]", tt.query, tt.station, got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
