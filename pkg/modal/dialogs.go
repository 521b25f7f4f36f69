package modal

// Confirm is a yes/no dialog about one document
type Confirm struct {
	Open       bool
	DocumentID string
	Filename   string
}

// CloseTab asks whether to save a dirty document before closing it
type CloseTab struct {
	Confirm
	// Summary describes the unsaved changes, e.g. "+3 -1"
	Summary string
}

// Reload asks whether to discard unsaved edits and re-read the file
type Reload struct {
	Confirm
}

func OpenCloseTab(id, filename, summary string) CloseTab {
	return CloseTab{
		Confirm: Confirm{Open: true, DocumentID: id, Filename: filename},
		Summary: summary,
	}
}

func CloseCloseTab(CloseTab) CloseTab {
	return CloseTab{}
}

func OpenReload(id, filename string) Reload {
	return Reload{Confirm: Confirm{Open: true, DocumentID: id, Filename: filename}}
}

func CloseReload(Reload) Reload {
	return Reload{}
}
