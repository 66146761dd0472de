package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := formatJSON(&buf, map[string]int{"elements_count": 3}); err != nil {
		t.Fatal(err)
	}

	var out map[string]int
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if out["elements_count"] != 3 {
		t.Errorf("got %v", out)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented JSON")
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	formatTable(&buf, []string{"ID", "NAME"}, [][]string{{"e1", "Pump"}, {"element-22", "X"}})

	want := "ID          NAME\n" +
		"----------  ----\n" +
		"e1          Pump\n" +
		"element-22  X\n"
	if buf.String() != want {
		t.Errorf("table mismatch:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestOutput(t *testing.T) {
	resetFlags(t)

	table := func(w io.Writer) { fmt.Fprintln(w, "T") }
	quiet := func(w io.Writer) { fmt.Fprintln(w, "Q") }

	tests := []struct {
		format  string
		table   func(io.Writer)
		quiet   func(io.Writer)
		want    string
		wantErr bool
	}{
		{format: "json", table: table, quiet: quiet, want: "{\n  \"a\": 1\n}\n"},
		{format: "table", table: table, quiet: quiet, want: "T\n"},
		{format: "quiet", table: table, quiet: quiet, want: "Q\n"},
		{format: "quiet", table: table, want: "{\n  \"a\": 1\n}\n"},
		{format: "yaml", table: table, quiet: quiet, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			flagFmt = tc.format
			var buf bytes.Buffer
			err := output(&buf, map[string]int{"a": 1}, tc.table, tc.quiet)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if buf.String() != tc.want {
				t.Errorf("got %q, want %q", buf.String(), tc.want)
			}
		})
	}
}
