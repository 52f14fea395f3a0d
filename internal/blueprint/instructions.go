package blueprint

import (
	"strings"

	"github.com/autoflow/autoflow/internal/model"
)

const makeImportGuide = `**Make.com Import Instructions:**
1. Log in to your Make.com account
2. Click "Create a new scenario"
3. Click the "..." menu in the top right
4. Select "Import Blueprint"
5. Copy the JSON template above
6. Paste it into the import dialog
7. Click "Save" to import the blueprint
8. Follow the connection prompts for each app
9. Test the scenario before activating
10. Turn on the scenario to run automatically

**Connecting Apps in Make.com:**
- Each module will show a "Create a connection" button
- Click it and follow the OAuth flow for each service
- Grant necessary permissions when prompted
- Test connections before proceeding`

const n8nImportGuide = `**n8n Import Instructions:**
1. Open your n8n instance
2. Click the "+" to create a new workflow
3. Click the "..." menu in the top right
4. Select "Import from JSON"
5. Copy the JSON template above
6. Paste it into the import dialog
7. Click "Import" to load the workflow
8. Configure credentials for each node
9. Test the workflow execution
10. Activate the workflow

**Setting Up Credentials in n8n:**
- Click on each node that requires authentication
- Click "Create New" under credentials
- Follow the setup wizard for each service
- Test the connection before saving
- Save and activate the workflow`

// ImportGuide returns the import walkthrough for a platform.
func ImportGuide(p model.Platform) string {
	if p == model.PlatformN8n {
		return n8nImportGuide
	}
	return makeImportGuide
}

// EnhanceSetupInstructions appends the platform import guide to base.
func EnhanceSetupInstructions(p model.Platform, base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ImportGuide(p)
	}
	return base + "\n\n" + ImportGuide(p)
}
