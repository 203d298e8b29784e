package commands

// HelpMarkdown documents the commands; front ends render it with glamour
const HelpMarkdown = `# Commands

| Command | Description |
|---|---|
| ` + "`/upload <path>`" + ` | Upload a file and let Jarvis acknowledge it |
| ` + "`/files`" + ` | List files stored on the server |
| ` + "`/download <name> [dest]`" + ` | Download a stored file |
| ` + "`/links`" + ` | List links in the latest reply |
| ` + "`/export <file.html>`" + ` | Save this conversation as an HTML page |
| ` + "`/new`" + ` | Start a new conversation |
| ` + "`/help`" + ` | Show this help |
| ` + "`/exit`" + ` | Quit |

Press **Enter** to send, **Alt+Enter** for a new line and **Tab** to complete
an ` + "`/upload`" + ` path.
`
