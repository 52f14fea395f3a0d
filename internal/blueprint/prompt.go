package blueprint

import (
	"fmt"
	"strings"

	"github.com/autoflow/autoflow/internal/model"
)

// System prompts sent ahead of the user prompt.
const (
	GenerationSystemPrompt = "You are an expert automation builder. Always provide complete, functional JSON automation templates that import cleanly into the target platform."
	ConversionSystemPrompt = "You are an expert automation platform converter. Always provide complete, functional blueprint conversions."
)

const makeShape = `{
  "name": "Scenario Name",
  "flow": [
    {
      "id": 1,
      "module": "google-sheets:WatchRows",
      "version": 2,
      "parameters": {"spreadsheetId": "{{connection.spreadsheetId}}", "sheetName": "Sheet1"},
      "mapper": {},
      "metadata": {"designer": {"x": 0, "y": 0}}
    }
  ],
  "metadata": {"instant": false, "version": 1, "scenario": {"roundtrips": 1, "maxErrors": 3}}
}`

const n8nShape = `{
  "name": "Workflow Name",
  "nodes": [
    {
      "parameters": {},
      "name": "Google Sheets Trigger",
      "type": "n8n-nodes-base.googleSheetsTrigger",
      "typeVersion": 1,
      "position": [240, 300]
    }
  ],
  "connections": {
    "Google Sheets Trigger": {"main": [[{"node": "Next Node", "type": "main", "index": 0}]]}
  },
  "active": false,
  "settings": {"executionOrder": "v1"}
}`

func shapeFor(p model.Platform) string {
	if p == model.PlatformN8n {
		return n8nShape
	}
	return makeShape
}

func moduleList(p model.Platform) string {
	var b strings.Builder
	for _, id := range KnownModules(p) {
		b.WriteString("- ")
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return b.String()
}

// GenerationPrompt builds the prompt asking for a sectioned automation response.
func GenerationPrompt(task string, p model.Platform) string {
	return fmt.Sprintf(`You are AutoFlow AI, an expert no-code automation generator.
Build a complete, importable %[1]s automation for this task:

Task: "%[2]s"
Target Platform: %[1]s

The JSON must follow this %[1]s structure exactly:
%[3]s

Use ONLY these verified module identifiers. Never invent or use placeholder identifiers:
%[4]s
Respond in this EXACT format:

🚀 Automation Summary: [one line describing what the automation does]

🧩 Platform: %[1]s

📦 Required Apps:
- [App: purpose and setup note]

📊 Automation Workflow Steps:
1. [Trigger]
2. [Action]

🧠 JSON Automation Template:
`+"```json"+`
[complete %[1]s JSON]
`+"```"+`

📋 Beginner Setup Instructions:
[step-by-step instructions for importing the JSON and connecting each app]

🎁 Bonus Assets:
[optional tips or resources]`, p, task, shapeFor(p), moduleList(p))
}

// ConversionPrompt builds the prompt asking to translate a blueprint between platforms.
func ConversionPrompt(blueprintJSON string, source, target model.Platform) string {
	return fmt.Sprintf(`Convert this %[1]s automation blueprint to %[2]s format.

SOURCE PLATFORM: %[1]s
TARGET PLATFORM: %[2]s

SOURCE JSON:
%[3]s

Requirements:
1. Maintain the same workflow logic and functionality
2. Map equivalent modules/nodes between platforms
3. Preserve all data transformations and connections
4. Generate valid %[2]s JSON following this structure:
%[4]s
5. Use ONLY these verified module identifiers:
%[5]s
Respond in this EXACT format:

🔄 CONVERTED %[6]s BLUEPRINT:

`+"```json"+`
[complete converted JSON]
`+"```"+`

📝 CONVERSION NOTES:
- Module mappings that changed
- Functionality differences
- Manual adjustments needed`, source, target, blueprintJSON, shapeFor(target), moduleList(target), strings.ToUpper(string(target)))
}
