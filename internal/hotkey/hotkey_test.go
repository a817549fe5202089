package hotkey

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Accel
		wantErr bool
	}{
		{in: "Alt+Space", want: Accel{Mods: ModAlt, Key: "Space"}},
		{in: "ctrl+shift+t", want: Accel{Mods: ModCtrl | ModShift, Key: "T"}},
		{in: "Cmd + Option + 1", want: Accel{Mods: ModSuper | ModAlt, Key: "1"}},
		{in: "F9", want: Accel{Key: "F9"}},
		{in: "Control+Escape", want: Accel{Mods: ModCtrl, Key: "Escape"}},
		{in: "Alt+", wantErr: true},
		{in: "Ctrl+Shift", wantErr: true},
		{in: "A+B", wantErr: true},
		{in: "Alt+F13", wantErr: true},
		{in: "Alt+F09", wantErr: true},
		{in: "Hyper+Space", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) = %+v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAccelString(t *testing.T) {
	a, err := Parse("shift+ctrl+space")
	if err != nil {
		t.Fatal(err)
	}
	if a.String() != "Ctrl+Shift+Space" {
		t.Errorf("String() = %q", a.String())
	}
}

func TestX11Mapping(t *testing.T) {
	if got := x11Mods(ModAlt); got != 8 {
		t.Errorf("Alt mask = %d, want 8", got)
	}
	if got := x11Mods(ModCtrl | ModShift | ModSuper); got != 1|4|64 {
		t.Errorf("mask = %d", got)
	}
	if got := x11GrabMasks(8); len(got) != 4 || got[3] != 8|2|16 {
		t.Errorf("grab masks = %v", got)
	}
	for key, want := range map[string]string{"Space": "space", "T": "t", "F5": "F5", "7": "7"} {
		if got := x11Keysym(key); got != want {
			t.Errorf("x11Keysym(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestCarbonMapping(t *testing.T) {
	if got := carbonMods(ModCtrl); got != 0x1000 {
		t.Errorf("Ctrl flags = %#x", got)
	}
	if got := carbonMods(ModSuper | ModShift | ModAlt); got != 0x0100|0x0200|0x0800 {
		t.Errorf("flags = %#x", got)
	}
	if code, ok := carbonKey("Space"); !ok || code != 49 {
		t.Errorf("Space = %d, %v", code, ok)
	}
	if _, ok := carbonKey("F13"); ok {
		t.Error("F13 should be unknown")
	}
}
