package common

// TokenHeaderName is the gRPC metadata key carrying the caller's auth token.
const TokenHeaderName = "x-token"

// RootParentID is the parent id of files living at the top of the hierarchy.
const RootParentID = "0"

// DefaultPageSize is the listing page size used when none is configured.
const DefaultPageSize = 20

// ThumbnailWidths are the rendition widths produced for every image, largest first.
var ThumbnailWidths = []int{500, 250, 100}
