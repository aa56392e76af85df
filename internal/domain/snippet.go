package domain

import (
	"time"

	"github.com/google/uuid"
)

// SnippetLocation is where in the reader template a snippet is injected.
type SnippetLocation string

const (
	SnippetHeadStart SnippetLocation = "head_start"
	SnippetBodyEnd   SnippetLocation = "body_end"
	SnippetAdHeader  SnippetLocation = "ad_header"
	SnippetAdContent SnippetLocation = "ad_content"
	SnippetAdInfo    SnippetLocation = "ad_info"
)

// Snippet is an injected piece of markup (analytics, ad network loaders).
// A nil TenantID applies the snippet to every tenant. Testing snippets are
// only injected into preview views.
type Snippet struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  *uuid.UUID      `json:"tenant_id,omitempty"`
	Location  SnippetLocation `json:"location"`
	Code      string          `json:"code"`
	Testing   bool            `json:"testing"`
	CreatedAt time.Time       `json:"created_at"`
}
