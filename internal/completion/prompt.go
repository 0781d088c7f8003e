package completion

import (
	"fmt"

	"github.com/SaadHafeez466/qa-app/internal/testcase"
)

// SystemInstruction is the role given to the model on every request.
const SystemInstruction = "You are a senior QA engineer."

// userPromptTemplate takes the category, then the user story.
// The three columns and the phrasing rule are what ParseResponse relies on.
const userPromptTemplate = `You are a QA engineer. Generate detailed %s for the following user story:

User Story:
%s

Provide test cases in a table format with the following columns:
- Test Case ID
- Test case
- Expected Result

Separate the columns with the | character, one test case per line.

Note that the test case should be in following format:
Use the phrasing pattern: 'Verify that (expected result) when (action taken).'`

// Prompt is one request to the completion service.
type Prompt struct {
	System   string
	User     string
	Category testcase.Category
}

// BuildPrompt fills the instruction template for one category.
func BuildPrompt(category testcase.Category, narrative string) Prompt {
	return Prompt{
		System:   SystemInstruction,
		User:     fmt.Sprintf(userPromptTemplate, category, narrative),
		Category: category,
	}
}
