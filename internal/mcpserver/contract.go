package mcpserver

// NotesContract describes the notes model and the tools that operate on it,
// for LLM consumers that need to know how results are shaped.
const NotesContract = `# Notes Tool Contract

Every note has three fields:

- ` + "`id`" + `: assigned by the server, never reused. Pass it back unchanged.
- ` + "`title`" + `: non-empty text.
- ` + "`content`" + `: non-empty text.

## Results

Every tool returns the current view as JSON:

` + "```" + `json
{"view": "all notes", "mode": "id", "notes": [{"id": 1, "title": "...", "content": "..."}]}
` + "```" + `

` + "`view`" + ` tells what ` + "`notes`" + ` holds:

- ` + "`empty`" + `: nothing loaded yet, or every note was just deleted.
- ` + "`all notes`" + `: the full collection in server order.
- ` + "`search result`" + `: the outcome of an id search. An empty list means no such note.
- ` + "`filtered`" + `: title or content matches, possibly none.

## Rules

1. Empty titles, contents or queries are ignored and the view is returned unchanged.
2. ` + "`update_note`" + ` changes only the fields you pass. Pass both to replace the note.
3. Any change (create, update, delete) replaces a search result with the full list.
4. ` + "`search_notes`" + ` matches title and content case-insensitively by substring.
   The ` + "`id`" + ` mode looks up exactly one note.
5. Call ` + "`list_notes`" + ` to clear a search.
`
