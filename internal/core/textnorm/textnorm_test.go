package textnorm

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello", "hello"},
		{"FRANÇAIS", "francais"},
		{"Ｗｉｄｅ", "wide"},
		{"naïve café", "naive cafe"},
		{"", ""},
		{"ＡＣＴＩＶＥ", "active"},
	}
	for _, tc := range cases {
		if got := Fold(tc.in); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonical(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Active   Employee  ", "active employee"},
		{"UNITED\t\tKINGDOM", "united kingdom"},
		{"last\n90\ndays", "last 90 days"},
	}
	for _, tc := range cases {
		if got := Canonical(tc.in); got != tc.want {
			t.Errorf("Canonical(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("  Stock   OPTIONS ")
	if !reflect.DeepEqual(got, []string{"stock", "options"}) {
		t.Fatalf("Tokens = %v", got)
	}
}

func TestContainsToken(t *testing.T) {
	cases := []struct {
		text, phrase string
		want         bool
	}{
		{"show all plans", "all", true},
		{"small plans", "all", false},
		{"grants including terminated staff", "including terminated", true},
		{"including", "including terminated", false},
		{"", "all", false},
	}
	for _, tc := range cases {
		if got := ContainsToken(tc.text, tc.phrase); got != tc.want {
			t.Errorf("ContainsToken(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
		}
	}
}

func TestFoldConcurrent(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				if Fold("Ärger") != "arger" {
					t.Error("concurrent fold mismatch")
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	close(done)
}
