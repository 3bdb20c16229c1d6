package session

import "testing"

func TestInertiaVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		html    string
		want    string
		wantErr bool
	}{
		{
			name: "string version",
			html: `<html><body><div id="app" data-page='{"component":"Statistics/Swimming","props":{},"url":"/statistics/swimming","version":"0d60a0cef251f76c204b2a1cd16b0d69"}'></div></body></html>`,
			want: PinnedInertiaVersion,
		},
		{
			name: "numeric version",
			html: `<div id="app" data-page='{"version":7}'></div>`,
			want: "7",
		},
		{
			name:    "no page object",
			html:    `<html><body><p>hi</p></body></html>`,
			wantErr: true,
		},
		{
			name:    "null version",
			html:    `<div id="app" data-page='{"version":null}'></div>`,
			wantErr: true,
		},
		{
			name:    "broken json",
			html:    `<div id="app" data-page='{"version":'></div>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := InertiaVersion(tt.html)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("InertiaVersion: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
