package screen

import "testing"

func TestParseWMClass(t *testing.T) {
	tests := []struct {
		name         string
		out          string
		wantInstance string
		wantClass    string
	}{
		{
			name:         "typical browser",
			out:          `WM_CLASS(STRING) = "navigator", "Firefox"`,
			wantInstance: "navigator",
			wantClass:    "Firefox",
		},
		{
			name:         "terminal",
			out:          `WM_CLASS(STRING) = "gnome-terminal-server", "Gnome-terminal"`,
			wantInstance: "gnome-terminal-server",
			wantClass:    "Gnome-terminal",
		},
		{
			name:         "single value",
			out:          `WM_CLASS(STRING) = "xterm"`,
			wantInstance: "xterm",
			wantClass:    "",
		},
		{
			name:         "property missing",
			out:          `WM_CLASS:  not found.`,
			wantInstance: "",
			wantClass:    "",
		},
		{
			name:         "empty output",
			out:          "",
			wantInstance: "",
			wantClass:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance, class := parseWMClass(tt.out)
			if instance != tt.wantInstance || class != tt.wantClass {
				t.Errorf("parseWMClass(%q) = (%q, %q), want (%q, %q)",
					tt.out, instance, class, tt.wantInstance, tt.wantClass)
			}
		})
	}
}
