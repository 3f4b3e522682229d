package descriptions

import (
	"strings"
	"testing"
)

func TestGetToolDescription(t *testing.T) {
	for name := range ToolDescriptions {
		if d := GetToolDescription(name); !strings.Contains(d, "**When to use:**") {
			t.Errorf("description of %s has no usage section", name)
		}
	}
	if got := GetToolDescription("docx_convert"); got != "Tool description not available" {
		t.Errorf("unexpected description for unknown tool: %q", got)
	}
}
