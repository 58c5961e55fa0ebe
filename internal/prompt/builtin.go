package prompt

// builtinTemplates maps template filename to content.
var builtinTemplates = map[string]string{
	"review.md": reviewTemplate,
	"ask.md":    askTemplate,
	"answer.md": answerTemplate,
}

const reviewTemplate = `Review the code checked out in the current working directory.

{{#if question}}
The reviewer left this request with the trigger:
{{question}}
{{/if}}

Focus on correctness, error handling, and tests. Report concrete
findings with file references; do not restate the diff.
{{#if issue_context_file}}

The thread discussion so far is in {{issue_context_file}}.
{{/if}}
`

const askTemplate = `Answer this question about the code in the current working directory:

{{question}}

Ground every claim in the actual code; reference files and functions by
name.
{{#if issue_context_file}}

The thread discussion so far is in {{issue_context_file}}.
{{/if}}
`

const answerTemplate = `Answer this GitLab thread question:

{{question}}
{{#if issue_context_file}}

Use the issue thread context in {{issue_context_file}}.
{{/if}}
`
