package descriptions

// Tool descriptions shown to MCP clients.

const (
	DocxDetectDescription = `Recognize which known form template a Word document is.

**When to use:** Before filling, to check that a .docx or .doc form is one of the registered templates.

**Why it's useful:** Scores the first page of the document against every template and explains the result line by line: which phrases matched, which were missing, which gates disqualified a template.

**Examples:**
• Single form: "Which template is forms/diary_ivanov.docx?"
• Whole folder: "Detect every form in incoming/"

**Best practices:** Pass either path or input. When a document is not recognized by content, templates with filename_globs are tried against the file name.`

	DocxSuggestDescription = `Propose detection phrases for a new, not yet registered form.

**When to use:** Authoring a catalog entry for a form the registry does not know.

**Why it's useful:** Lists the first lines, labelled lines ending in a colon, upper-case headings and keyword lines of the first page, plus a required/optional skeleton ready to paste into a YAML catalog.

**Examples:**
• "Suggest anchors for templates/new_statement.docx"

**Best practices:** Review the skeleton by hand; drop personal data lines before adding them to a catalog.`

	DocxFillDescription = `Fill Word forms with rows of a master workbook.

**When to use:** Producing filled documents from the 'data' sheet of an .xlsx workbook.

**Why it's useful:** In auto mode each document is recognized and filled with its template's own mapping. With use_mapping the workbook's 'mapping' and 'settings' sheets drive the fill instead. Every rule leaves a trace line.

**Examples:**
• Preview: "Fill forms/ with master.xlsx, dry run"
• One student: "Fill diary.docx from master.xlsx row 3 into out/"

**Best practices:** Run with dry_run first and read the trace. Output names come from the template's filename mask.`

	DocxListTemplatesDescription = `List the registered form templates.

**When to use:** To see which forms can be recognized and filled, with their thresholds, rule counts and filename masks.`

	DocxValidateDescription = `Check that a file can be opened as a Word document.

**When to use:** Before detect or fill on files of unknown origin.

**Why it's useful:** Reports size limit violations, wrong extensions and broken .docx packages without running classification.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"docx_detect":         DocxDetectDescription,
	"docx_suggest":        DocxSuggestDescription,
	"docx_fill":           DocxFillDescription,
	"docx_list_templates": DocxListTemplatesDescription,
	"docx_validate":       DocxValidateDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}
