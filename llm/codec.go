package llm

import (
	"net/http"

	"github.com/parlancehq/parlance/sse"
)

// Codec translates between the canonical model and one vendor's wire format.
// Implementations are stateless and safe to share across requests.
type Codec interface {
	// Vendor returns the vendor identifier used in errors and logs.
	Vendor() string

	// Endpoint returns the full request URL. An empty baseURL selects the
	// vendor's default host. Some vendors put the model or the streaming
	// mode in the path, which is why both are parameters.
	Endpoint(baseURL, model string, stream bool) string

	// BuildRequest serializes the canonical request into the vendor's JSON.
	BuildRequest(req *ChatRequest, stream bool) ([]byte, error)

	// Headers returns the authentication and identity headers the vendor
	// requires. It must not contain Content-Type or Accept; the transport
	// owns those so each appears exactly once on the wire.
	Headers() http.Header

	// ParseResponse maps the vendor's success envelope to a ChatResponse.
	// A structurally absent envelope yields an empty response, not an error.
	ParseResponse(body []byte) (*ChatResponse, error)

	// ParseError maps an error status and body to a canonical *Error.
	ParseError(status int, body []byte) error

	// NewEventMapper returns a fresh mapper for one stream. Mappers are
	// stateful and must not be shared between streams.
	NewEventMapper() EventMapper
}

// EventMapper turns one vendor's SSE records into canonical chunks. A mapper
// belongs to exactly one stream and may keep per-stream state (response ids,
// content-block bookkeeping) in ordinary fields.
type EventMapper interface {
	// MapEvent returns zero or more chunks for one SSE record. Unknown
	// event types must be ignored, not failed. A returned error ends the
	// stream.
	MapEvent(ev sse.Event) ([]StreamChunk, error)
}
