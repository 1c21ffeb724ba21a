package sapo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Page is a static content page.
type Page struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Handle         string `json:"handle"`
	BodyHTML       string `json:"body_html,omitempty"`
	Author         string `json:"author,omitempty"`
	TemplateSuffix string `json:"template_suffix,omitempty"`
	Published      bool   `json:"published"`
	PublishedOn    string `json:"published_on,omitempty"`
	ShopID         int64  `json:"shop_id"`
	CreatedOn      string `json:"created_on"`
	UpdatedOn      string `json:"updated_on"`
}

// PageAuthor is a page author profile.
type PageAuthor struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Bio        string `json:"bio,omitempty"`
	PagesCount int    `json:"pages_count"`
}

// PageAnalytics summarizes traffic for a page over a period.
type PageAnalytics struct {
	Views       int     `json:"views"`
	Visitors    int     `json:"visitors"`
	AverageTime float64 `json:"average_time"`
	BounceRate  float64 `json:"bounce_rate"`
	Period      struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
}

// CreatePageData is the payload for creating or updating a page.
type CreatePageData struct {
	Title          string `json:"title,omitempty"`
	BodyHTML       string `json:"body_html,omitempty"`
	Author         string `json:"author,omitempty"`
	TemplateSuffix string `json:"template_suffix,omitempty"`
	Published      *bool  `json:"published,omitempty"`
	Handle         string `json:"handle,omitempty"`
}

// PageListParams filter page list and count requests.
type PageListParams struct {
	ListParams
	Published      *bool
	Handle         string
	Title          string
	PublishedOnMin string
	PublishedOnMax string
}

func (p *PageListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addBool(v, "published", p.Published)
	addString(v, "handle", p.Handle)
	addString(v, "title", p.Title)
	addString(v, "published_on_min", p.PublishedOnMin)
	addString(v, "published_on_max", p.PublishedOnMax)
	return v
}

// PagesService wraps the page endpoints.
type PagesService struct {
	client *Client
}

// List returns a page of pages.
func (s *PagesService) List(ctx context.Context, params *PageListParams) ([]Page, error) {
	var env struct {
		Pages []Page `json:"pages"`
	}
	if err := s.client.Get(ctx, "/admin/pages.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Pages, nil
}

// Get returns a single page by id.
func (s *PagesService) Get(ctx context.Context, id int64) (*Page, error) {
	var env struct {
		Page Page `json:"page"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/pages/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Page, nil
}

// Create creates a new page.
func (s *PagesService) Create(ctx context.Context, data CreatePageData) (*Page, error) {
	var env struct {
		Page Page `json:"page"`
	}
	body := map[string]CreatePageData{"page": data}
	if err := s.client.Post(ctx, "/admin/pages.json", body, &env); err != nil {
		return nil, err
	}
	return &env.Page, nil
}

// Update updates an existing page.
func (s *PagesService) Update(ctx context.Context, id int64, data CreatePageData) (*Page, error) {
	var env struct {
		Page Page `json:"page"`
	}
	body := map[string]CreatePageData{"page": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/pages/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.Page, nil
}

// Delete deletes a page.
func (s *PagesService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/pages/%d.json", id))
}

// Count returns the total number of pages matching the filters.
func (s *PagesService) Count(ctx context.Context, params *PageListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/pages/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// Search finds pages by free-text query.
func (s *PagesService) Search(ctx context.Context, query string, limit int) ([]Page, error) {
	var env struct {
		Pages []Page `json:"pages"`
	}
	q := url.Values{}
	q.Set("query", query)
	addInt(q, "limit", limit)
	if err := s.client.Get(ctx, "/admin/pages/search.json", q, &env); err != nil {
		return nil, err
	}
	return env.Pages, nil
}

// GetByHandle returns the page with the given handle, or nil when no page
// matches.
func (s *PagesService) GetByHandle(ctx context.Context, handle string) (*Page, error) {
	pages, err := s.List(ctx, &PageListParams{Handle: handle})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}

// GetAnalytics returns the traffic summary of a page over a date range.
func (s *PagesService) GetAnalytics(ctx context.Context, id int64, start, end string) (*PageAnalytics, error) {
	var env struct {
		Analytics PageAnalytics `json:"analytics"`
	}
	q := url.Values{}
	addString(q, "start", start)
	addString(q, "end", end)
	path := fmt.Sprintf("/admin/pages/%d/analytics.json", id)
	if err := s.client.Get(ctx, path, q, &env); err != nil {
		return nil, err
	}
	return &env.Analytics, nil
}

// GetAuthor returns a page author profile, or nil when no author exists.
func (s *PagesService) GetAuthor(ctx context.Context, id int64) (*PageAuthor, error) {
	var env struct {
		Author PageAuthor `json:"author"`
	}
	path := fmt.Sprintf("/admin/pages/authors/%d.json", id)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return &env.Author, nil
}

// Publish publishes a page.
func (s *PagesService) Publish(ctx context.Context, id int64) (*Page, error) {
	return s.pageAction(ctx, id, "publish")
}

// Unpublish unpublishes a page.
func (s *PagesService) Unpublish(ctx context.Context, id int64) (*Page, error) {
	return s.pageAction(ctx, id, "unpublish")
}

func (s *PagesService) pageAction(ctx context.Context, id int64, action string) (*Page, error) {
	var env struct {
		Page Page `json:"page"`
	}
	path := fmt.Sprintf("/admin/pages/%d/%s.json", id, action)
	if err := s.client.Post(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Page, nil
}
