package blueprint

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/autoflow/autoflow/internal/model"
)

// knownMakeModules are module identifiers accepted by Make.com's blueprint importer.
var knownMakeModules = map[string]string{
	"google-sheets:WatchRows":         "Watch new rows in a Google Sheet",
	"google-sheets:SearchRows":        "Search rows in a Google Sheet",
	"google-sheets:AddRow":            "Add a row to a Google Sheet",
	"google-sheets:UpdateRow":         "Update a Google Sheet row",
	"google-sheets:GetRange":          "Read a cell range",
	"google-sheets:ClearRange":        "Clear a cell range",
	"google-drive:WatchFiles":         "Watch files in a Google Drive folder",
	"google-drive:UploadFile":         "Upload a file to Google Drive",
	"google-drive:DownloadFile":       "Download a Google Drive file",
	"openai:CreateChatCompletion":     "Generate text with a chat model",
	"openai:CreateCompletion":         "Generate text with a completion model",
	"openai:CreateImage":              "Generate an image",
	"openai:CreateTranscription":      "Transcribe audio",
	"http:ActionSendData":             "Make an HTTP request",
	"http:ActionSendDataOAuth2":       "Make an OAuth 2.0 HTTP request",
	"webhook:CustomWebHook":           "Receive data on a custom webhook",
	"gateway:CustomWebHook":           "Receive data on a custom webhook",
	"wordpress:CreatePost":            "Create a WordPress post",
	"wordpress:UpdatePost":            "Update a WordPress post",
	"wordpress:GetPost":               "Get a WordPress post",
	"instagram:CreateMedia":           "Create an Instagram media container",
	"instagram:PublishMedia":          "Publish an Instagram media container",
	"facebook:CreatePost":             "Create a Facebook Page post",
	"facebook:CreatePhoto":            "Upload a photo to a Facebook Page",
	"twitter:CreateTweet":             "Post a tweet",
	"youtube:UploadVideo":             "Upload a YouTube video",
	"tiktok:UploadVideo":              "Upload a TikTok video",
	"builtin:BasicRouter":             "Route bundles to several branches",
	"builtin:Sleep":                   "Pause execution",
	"builtin:SetVariable":             "Set a scenario variable",
	"builtin:TextAggregator":          "Aggregate bundles into text",
	"builtin:ArrayAggregator":         "Aggregate bundles into an array",
	"email:ActionSendEmail":           "Send an email",
	"gmail:ActionSendEmail":           "Send an email from Gmail",
	"gmail:TriggerWatchEmails":        "Watch incoming Gmail messages",
	"hubspot:CreateContact":           "Create a HubSpot contact",
	"hubspot:UpdateContact":           "Update a HubSpot contact",
	"hubspot:SearchContacts":          "Search HubSpot contacts",
	"shopify:TriggerWatchOrders":      "Watch new Shopify orders",
	"shopify:CreateProduct":           "Create a Shopify product",
	"slack:CreateMessage":             "Send a Slack message",
	"json:ParseJSON":                  "Parse a JSON string",
	"json:CreateJSON":                 "Build a JSON string",
	"csv:ParseCSV":                    "Parse CSV text",
}

// knownN8nNodes are node types shipped with n8n.
var knownN8nNodes = map[string]string{
	"n8n-nodes-base.googleSheetsTrigger": "Watch a Google Sheet",
	"n8n-nodes-base.googleSheets":        "Read or write a Google Sheet",
	"n8n-nodes-base.googleDriveTrigger":  "Watch a Google Drive folder",
	"n8n-nodes-base.googleDrive":         "Google Drive file operations",
	"n8n-nodes-base.openAi":              "OpenAI text and image generation",
	"n8n-nodes-base.httpRequest":         "Make an HTTP request",
	"n8n-nodes-base.webhook":             "Receive data on a webhook",
	"n8n-nodes-base.wordpress":           "WordPress operations",
	"n8n-nodes-base.instagram":           "Instagram operations",
	"n8n-nodes-base.facebookGraphApi":    "Facebook Graph API call",
	"n8n-nodes-base.twitter":             "Twitter/X operations",
	"n8n-nodes-base.youTube":             "YouTube operations",
	"n8n-nodes-base.start":               "Manual start",
	"n8n-nodes-base.scheduleTrigger":     "Run on a schedule",
	"n8n-nodes-base.set":                 "Set field values",
	"n8n-nodes-base.code":                "Run JavaScript",
	"n8n-nodes-base.function":            "Run a legacy function",
	"n8n-nodes-base.wait":                "Pause execution",
	"n8n-nodes-base.if":                  "Conditional branch",
	"n8n-nodes-base.merge":               "Merge branches",
	"n8n-nodes-base.emailSend":           "Send an email over SMTP",
	"n8n-nodes-base.gmail":               "Gmail operations",
	"n8n-nodes-base.hubspot":             "HubSpot operations",
	"n8n-nodes-base.shopify":             "Shopify operations",
	"n8n-nodes-base.shopifyTrigger":      "Watch Shopify events",
	"n8n-nodes-base.slack":               "Slack operations",
}

var (
	makeModulePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*:[A-Za-z][A-Za-z0-9]*$`)
	n8nNodePattern    = regexp.MustCompile(`^(n8n-nodes-base|@n8n/n8n-nodes-langchain)\.[A-Za-z][A-Za-z0-9]*$`)
	placeholderWords  = []string{"placeholder", "example", "your-", "your_", "yourapp", "fake", "dummy", "xxx"}
)

// IsKnownModule reports whether id is in the registry for the platform.
func IsKnownModule(p model.Platform, id string) bool {
	if p == model.PlatformN8n {
		_, ok := knownN8nNodes[id]
		return ok
	}
	_, ok := knownMakeModules[id]
	return ok
}

// KnownModules returns the registry for the platform, sorted.
func KnownModules(p model.Platform) []string {
	registry := knownMakeModules
	if p == model.PlatformN8n {
		registry = knownN8nNodes
	}
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Modules lists every module identifier a blueprint references, in document order.
// Make router branches are walked recursively.
func Modules(p model.Platform, raw string) ([]string, error) {
	if p == model.PlatformN8n {
		var doc struct {
			Nodes []struct {
				Type string `json:"type"`
			} `json:"nodes"`
		}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decode n8n workflow: %w", err)
		}
		ids := make([]string, 0, len(doc.Nodes))
		for _, n := range doc.Nodes {
			ids = append(ids, n.Type)
		}
		return ids, nil
	}

	var doc struct {
		Flow []makeModule `json:"flow"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode make scenario: %w", err)
	}
	var ids []string
	collectMakeModules(doc.Flow, &ids)
	return ids, nil
}

type makeModule struct {
	Module string `json:"module"`
	Routes []struct {
		Flow []makeModule `json:"flow"`
	} `json:"routes"`
}

func collectMakeModules(flow []makeModule, ids *[]string) {
	for _, m := range flow {
		*ids = append(*ids, m.Module)
		for _, r := range m.Routes {
			collectMakeModules(r.Flow, ids)
		}
	}
}

// isPlaceholder reports whether id cannot be a real identifier on the platform.
func isPlaceholder(p model.Platform, id string) bool {
	lower := strings.ToLower(id)
	for _, w := range placeholderWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	if p == model.PlatformN8n {
		return !n8nNodePattern.MatchString(id)
	}
	if strings.HasPrefix(lower, "custom:") || strings.HasPrefix(lower, "custom-") {
		return true
	}
	return !makeModulePattern.MatchString(id)
}
