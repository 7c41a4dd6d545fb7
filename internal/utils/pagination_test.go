package utils

import "testing"

func TestWindow(t *testing.T) {
	tests := []struct {
		name                string
		skip, limit         int
		wantSkip, wantLimit int
	}{
		{"defaults", 0, 0, 0, 100},
		{"negative skip", -5, 10, 0, 10},
		{"negative limit", 20, -1, 20, 100},
		{"capped", 0, 1000, 0, 200},
		{"within bounds", 40, 50, 40, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSkip, gotLimit := Window(tt.skip, tt.limit, 100, 200)
			if gotSkip != tt.wantSkip || gotLimit != tt.wantLimit {
				t.Errorf("Window(%d, %d) = (%d, %d), want (%d, %d)",
					tt.skip, tt.limit, gotSkip, gotLimit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}
