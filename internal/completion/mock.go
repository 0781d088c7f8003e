package completion

import (
	"context"
	"fmt"
	"strings"
)

// MockClient answers locally with a small pipe table so the whole flow can
// run without a network or key.
type MockClient struct{}

// Complete returns three rows named after the prompt's category.
func (MockClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prefix := strings.ToUpper(prompt.Category.Alias())
	if prefix == "" {
		prefix = "TC"
	}

	var sb strings.Builder
	sb.WriteString("Test Case ID | Test case | Expected Result\n")
	sb.WriteString("---|---|---\n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&sb, "%s-%02d | Verify that scenario %d passes when the %s check is run | Scenario %d passes\n",
			prefix, i, i, strings.ToLower(string(prompt.Category)), i)
	}
	return sb.String(), nil
}
