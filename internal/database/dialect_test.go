package database

import "testing"

func TestMySQLDSNForcesMultiStatements(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "bare dsn",
			url:  "user:pass@tcp(localhost:3306)/antgiftbox",
			want: "user:pass@tcp(localhost:3306)/antgiftbox?multiStatements=true",
		},
		{
			name: "dsn with existing params",
			url:  "user:pass@tcp(localhost:3306)/antgiftbox?parseTime=true",
			want: "user:pass@tcp(localhost:3306)/antgiftbox?parseTime=true&multiStatements=true",
		},
		{
			name: "dsn already enables it",
			url:  "user:pass@tcp(localhost:3306)/antgiftbox?multiStatements=true",
			want: "user:pass@tcp(localhost:3306)/antgiftbox?multiStatements=true",
		},
		{
			name: "dsn explicitly disables it",
			url:  "user:pass@tcp(localhost:3306)/antgiftbox?multiStatements=false",
			want: "user:pass@tcp(localhost:3306)/antgiftbox?multiStatements=false",
		},
	}

	d := NewMySQLDialect()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.DSN(DialectConfig{URL: tt.url})
			if got != tt.want {
				t.Errorf("DSN(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
