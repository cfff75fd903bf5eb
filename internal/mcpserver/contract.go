package mcpserver

// CommandFormatContract describes the canonical bundle command format that
// LLM consumers should follow when creating bundles.
const CommandFormatContract = `# Raido Command Bundle Contract

Every command bundle stored in Raido MUST follow this structure.

## Fields

- **name** (required) – short human-readable title, shown in lists and search.
- **command_text** – the commands themselves, ONE shell command per line.
  Blank lines are allowed and ignored; leading/trailing whitespace is trimmed.
- **description** – what the bundle is for, free text.
- **keywords** – comma-separated lowercase terms (e.g. ` + "`" + `dns, resolver` + "`" + `),
  used for search and for keyword suggestions.
- **expected_outcome** – what a successful run looks like.
- **interpretation** – how to read the output, common failure signatures.
- **updated_date** – ISO date (` + "`" + `YYYY-MM-DD` + "`" + `); defaults to today when omitted.

## Rules

1. **One command per line.** Each non-blank line of ` + "`" + `command_text` + "`" + ` becomes a
   separate entry with its own memo slot. Do not join commands with ` + "`" + `&&` + "`" + `
   unless they genuinely form a single step.
2. **Memos are positional.** A memo is attached to (position, exact command
   text). Editing a command or reordering lines discards the memos of the
   changed positions. Append new commands at the end when possible.
3. **No shell prompts.** Write ` + "`" + `systemctl status nginx` + "`" + `, not ` + "`" + `$ systemctl status nginx` + "`" + `.
4. **Keywords are lowercase**, comma-separated, no ` + "`" + `#` + "`" + ` prefixes.
5. **Encoding** is UTF-8.

## Example

` + "```" + `json
{
  "name": "Rotate DNS resolver",
  "command_text": "systemctl restart systemd-resolved\nresolvectl status\ndig +short example.com",
  "description": "Restart the local resolver and verify it answers.",
  "keywords": "dns, resolver",
  "expected_outcome": "dig returns an A record within 1s.",
  "interpretation": "SERVFAIL after restart usually means the upstream is unreachable."
}
` + "```" + `
`
