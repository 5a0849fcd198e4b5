package options_test

import (
	"reflect"
	"testing"

	"vecc/internal/options"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"-vc-codegen", []string{"-vc-codegen"}},
		{"-vc-codegen  -emit-debug", []string{"-vc-codegen", "-emit-debug"}},
		{"-a\t-b\n-c", []string{"-a", "-b", "-c"}},
		{"'-dumpcommonisa -output'", []string{"-dumpcommonisa -output"}},
		{`-Xfinalizer "-abortonspill true"`, []string{"-Xfinalizer", "-abortonspill true"}},
		{`"a \"b\" c"`, []string{`a "b" c`}},
		{`"back\\slash"`, []string{`back\slash`}},
		{`one\ token`, []string{"one token"}},
		{"'unterminated", []string{"unterminated"}},
		{`-opt=''`, []string{"-opt="}},
	}
	for _, tc := range cases {
		got := options.Tokenize(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
