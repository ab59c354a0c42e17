package vault

// Category names. Membership of a note is determined by the folder that
// physically contains it; the header "category" field is a cache of this.
const (
	CategoryProjects    = "Projects"
	CategoryActions     = "Actions"
	CategoryMedia       = "Media"
	CategoryReference   = "Reference"
	CategoryMemories    = "Memories"
	CategoryInbox       = "Inbox"
	CategoryAttachments = "Attachments"
)

// FallbackCategory receives notes whose requested folder is not a known
// category.
const FallbackCategory = CategoryInbox

// Categories maps each category folder to a one-line description used in
// classification prompts.
var Categories = map[string]string{
	CategoryProjects:    "Project documentation, snippets, whiteboard photos, ideas",
	CategoryActions:     "Tasks and to-dos with due dates and status tracking",
	CategoryMedia:       "Books, films, TV, podcasts, articles, videos to consume",
	CategoryReference:   "How-tos, explanations, useful information to find again",
	CategoryMemories:    "Personal memories: people, places, moments to keep",
	CategoryAttachments: "Binary files (images, PDFs) linked from categorised notes",
	CategoryInbox:       "Uncategorised fallback for ambiguous captures",
}

// CategoryOrder is the fixed iteration order for folder-less lookups and
// whole-vault scans.
var CategoryOrder = []string{
	CategoryProjects,
	CategoryActions,
	CategoryMedia,
	CategoryReference,
	CategoryMemories,
	CategoryInbox,
	CategoryAttachments,
}

// CategoryDefaults lists the expected header fields per category with their
// default values, used by the maintenance pass to backfill missing fields.
var CategoryDefaults = map[string]map[string]string{
	CategoryProjects: {"project_name": "", "priority": "3 - Medium"},
	CategoryActions: {
		"action_item": "",
		"status":      "todo",
		"priority":    "3 - Medium",
		"due_date":    "",
		"project":     "",
	},
	CategoryMedia: {
		"media_type": "article",
		"creator":    "",
		"url":        "",
		"status":     "to_consume",
	},
	CategoryReference: {"topic": ""},
	CategoryMemories:  {"people": "", "location": "", "memory_date": ""},
}

// CategoryDefaultOrder fixes the emit order of backfilled fields so the
// maintenance pass is deterministic.
var CategoryDefaultOrder = map[string][]string{
	CategoryProjects:  {"project_name", "priority"},
	CategoryActions:   {"action_item", "status", "priority", "due_date", "project"},
	CategoryMedia:     {"media_type", "creator", "url", "status"},
	CategoryReference: {"topic"},
	CategoryMemories:  {"people", "location", "memory_date"},
}

// ValidCategory reports whether name is a known category folder.
func ValidCategory(name string) bool {
	_, ok := Categories[name]
	return ok
}
