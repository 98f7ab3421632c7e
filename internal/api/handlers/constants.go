package handlers

const (
	// Client-facing error messages
	errMethodNotAllowed = "Method Not Allowed"
	errMalformedBody    = "Request body must be a JSON object of at most 1 MiB"
	errInternal         = "Internal server error"

	bytesToMB = 1024 * 1024
)
