package cmd

import (
	"bytes"
	"testing"
)

func TestDurationCommands(t *testing.T) {
	tests := []struct {
		name    string
		run     func(out *bytes.Buffer) error
		want    string
		wantErr bool
	}{
		{
			name: "parse grammar",
			run: func(out *bytes.Buffer) error {
				durationParseCmd.SetOut(out)
				return durationParseCmd.RunE(durationParseCmd, []string{"1h", "30m"})
			},
			want: "5400 seconds (1h 30m)\n",
		},
		{
			name: "parse bare hours",
			run: func(out *bytes.Buffer) error {
				durationParseCmd.SetOut(out)
				return durationParseCmd.RunE(durationParseCmd, []string{"2"})
			},
			want: "7200 seconds (2h)\n",
		},
		{
			name: "parse malformed",
			run: func(out *bytes.Buffer) error {
				durationParseCmd.SetOut(out)
				return durationParseCmd.RunE(durationParseCmd, []string{"soon"})
			},
			wantErr: true,
		},
		{
			name: "format",
			run: func(out *bytes.Buffer) error {
				durationFormatCmd.SetOut(out)
				return durationFormatCmd.RunE(durationFormatCmd, []string{"3720"})
			},
			want: "1h 2m\n",
		},
		{
			name: "format negative",
			run: func(out *bytes.Buffer) error {
				durationFormatCmd.SetOut(out)
				return durationFormatCmd.RunE(durationFormatCmd, []string{"-1"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := tt.run(&out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, out.String())
			}
		})
	}
}
