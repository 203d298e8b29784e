package backend

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of POST /api/chat
type ChatResponse struct {
	Response string `json:"response"`
}

// FilesResponse is the body of GET /api/files
type FilesResponse struct {
	Files []string `json:"files"`
}

// errorResponse is returned by GET /api/download when the file is missing
type errorResponse struct {
	Error string `json:"error"`
}
