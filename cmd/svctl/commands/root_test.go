package commands

import (
	"testing"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

func TestProtocolFromFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  visionary.ProtocolType
	}{
		{input: "colab", want: visionary.ProtocolColaB},
		{input: "cola2", want: visionary.ProtocolCola2},
		{input: "", want: visionary.ProtocolColaB},
		{input: "bogus", want: visionary.ProtocolColaB},
	}

	for _, tt := range tests {
		if got := protocolFromFlag(tt.input); got != tt.want {
			t.Errorf("protocolFromFlag(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoginLevelsTable(t *testing.T) {
	t.Parallel()

	want := map[string]visionary.UserLevel{
		"run":               visionary.UserLevelRun,
		"operator":          visionary.UserLevelOperator,
		"maintenance":       visionary.UserLevelMaintenance,
		"authorized_client": visionary.UserLevelAuthorizedClient,
		"service":           visionary.UserLevelService,
	}

	for name, level := range want {
		if loginLevels[name] != level {
			t.Errorf("loginLevels[%q] = %v, want %v", name, loginLevels[name], level)
		}
	}
	if len(loginLevels) != len(want) {
		t.Errorf("loginLevels has %d entries, want %d", len(loginLevels), len(want))
	}
}
