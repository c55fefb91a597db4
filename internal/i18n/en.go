package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Bot replies (conversation controller)
	"reply.not_configured": "I'm sorry, the webhook URL is not configured. Please contact support.",
	"reply.status_error":   "I'm sorry, I encountered an error (Status: %d). Please try sending your message again. If the issue continues, please start a new chat.",
	"reply.not_json":       "I'm sorry, I received an unexpected response from the server. Please try again.",
	"reply.network":        "An unexpected network error occurred. Please try sending your message again. If the issue continues, please start a new chat.",
	"reply.unrecognized":   "I received a response, but couldn't understand it.",

	// Presentation generation
	"deck.error":             "An error occurred while generating the PowerPoint: %s",
	"deck.error_empty":       "An error occurred generating the presentation.",
	"deck.featured_required": "Please enter a Featured Service.",
	"deck.building":          "Building Your Presentation...",
	"deck.no_document":       "Select a document message first.",
	"deck.generated":         "Presentation ready: %d slides",

	// Attachments
	"attach.echo":      "📎 File attached: %s",
	"attach.too_large": "File Too Large: %s exceeds %d MB",
	"attach.invalid":   "Invalid File Type: %s",
	"attach.pending":   "Attached: %s (Esc to remove)",

	// UI - App chrome
	"app.title":            "Deck Chat",
	"sidebar.sessions":     "Chats",
	"sidebar.new":          "New Chat",
	"sidebar.messages":     "%d msgs",
	"composer.placeholder": "Type your message...",
	"status.ready":         "Ready",
	"status.sending":       "Sending...",
	"status.generating":    "Generating presentation...",
	"status.pending":       "%d pending",

	// Loading messages, rotated while a send is in flight
	"loading.0": "Thinking... Please wait a moment.",
	"loading.1": "Just a moment while I process that.",
	"loading.2": "Analyzing your request right now.",
	"loading.3": "Let me think about that for you.",
	"loading.4": "Crafting the perfect response now.",
	"loading.5": "Consulting my digital brain for you.",

	// Prompt starters (empty session)
	"starter.heading":  "Start with one of these (press 1-3):",
	"starter.0.title":  "Introduce AI at Work",
	"starter.0.prompt": "Research the best strategies for introducing AI into a team's workflow, focusing on communication, training, and addressing potential concerns.",
	"starter.1.title":  "Effective AI Prompts",
	"starter.1.prompt": "I need to train my team on how to ask AI better questions. Research the key principles of effective prompt engineering for business users.",
	"starter.2.title":  "Analyze AI's Impact",
	"starter.2.prompt": "Research and summarize the potential impact of generative AI on the digital marketing industry, including key opportunities and risks.",

	// Transcript
	"transcript.you":      "You",
	"transcript.bot":      "Assistant",
	"transcript.document": "Document: %s",
	"transcript.has_deck": "presentation attached (/view)",
	"transcript.no_deck":  "generate a presentation with /present",

	// Presentation prompt form
	"form.title":            "Craft Your Presentation",
	"form.description":      "Provide a few key details. The rest is generated from the document \"%s\".",
	"form.featured":         "Featured Service",
	"form.featured_hint":    "e.g., Logo Design Services",
	"form.announcement":     "Announcement (Optional)",
	"form.ann_title":        "Title",
	"form.ann_title_hint":   "e.g., System Maintenance Scheduled",
	"form.ann_content":      "Content",
	"form.ann_content_hint": "Please be advised that our systems will undergo maintenance...",
	"form.ann_closing":      "Closing Message",
	"form.ann_closing_hint": "Your prompt attention is appreciated.",
	"form.visuals":          "Visual preferences",
	"form.visuals_hint":     "e.g., dark theme, bold headings",
	"form.help":             "tab next field • enter generate • esc cancel",

	// Presentation viewer
	"viewer.progress": "Slide %d of %d",
	"viewer.empty":    "No presentation content found. Please return to chat and generate a presentation.",
	"viewer.playing":  "Playing",
	"viewer.paused":   "Paused",
	"viewer.help":     "←/→ navigate • space play/pause • r regenerate • esc close",

	// Slash commands
	"cmd.help":            "Commands: /new, /delete, /switch <n>, /attach <path>, /detach, /present [n], /view [n], /regen, /sessions, /help, /quit",
	"cmd.unknown":         "Unknown command: %s",
	"cmd.switch_usage":    "Usage: /switch <n>",
	"cmd.attach_usage":    "Usage: /attach <path>",
	"cmd.no_session":      "No such chat: %s",
	"cmd.deleted":         "Deleted chat \"%s\"",
	"cmd.created":         "Started a new chat",
	"cmd.no_presentation": "This document has no presentation yet. Use /present first.",

	// Errors
	"error.provider": "Provider error: %s",
	"error.config":   "Config error: %s",
	"error.storage":  "Storage error: %s",

	// CLI
	"cli.imported":  "Imported %d sessions from %s",
	"cli.no_models": "No models returned by %s",
}
