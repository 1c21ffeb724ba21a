package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// Blog is a container for articles.
type Blog struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Handle          string   `json:"handle"`
	CommentsEnabled bool     `json:"comments_enabled"`
	TemplateSuffix  string   `json:"template_suffix,omitempty"`
	FeedburnerURL   string   `json:"feedburner_url,omitempty"`
	Moderated       bool     `json:"moderated"`
	Tags            []string `json:"tags,omitempty"`
	CreatedOn       string   `json:"created_on"`
	UpdatedOn       string   `json:"updated_on"`
}

// Article is a post within a blog.
type Article struct {
	ID              int64  `json:"id"`
	BlogID          int64  `json:"blog_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	BodyHTML        string `json:"body_html"`
	SummaryHTML     string `json:"summary_html,omitempty"`
	Handle          string `json:"handle"`
	Tags            string `json:"tags"`
	CommentsEnabled bool   `json:"comments_enabled"`
	TemplateSuffix  string `json:"template_suffix,omitempty"`
	Published       bool   `json:"published"`
	PublishedOn     string `json:"published_on,omitempty"`
	CommentsCount   int    `json:"comments_count"`
	CreatedOn       string `json:"created_on"`
	UpdatedOn       string `json:"updated_on"`
}

// Comment is a reader comment on an article.
type Comment struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"article_id"`
	BlogID    int64  `json:"blog_id"`
	Author    string `json:"author"`
	Email     string `json:"email"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
	IP        string `json:"ip,omitempty"`
	Website   string `json:"website,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on"`
}

// SpamCheck is the result of screening a comment for spam.
type SpamCheck struct {
	Spam  bool    `json:"spam"`
	Score float64 `json:"score"`
}

// CreateBlogData is the payload for creating or updating a blog.
type CreateBlogData struct {
	Title           string   `json:"title,omitempty"`
	CommentsEnabled *bool    `json:"comments_enabled,omitempty"`
	TemplateSuffix  string   `json:"template_suffix,omitempty"`
	FeedburnerURL   string   `json:"feedburner_url,omitempty"`
	Moderated       *bool    `json:"moderated,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// CreateArticleData is the payload for creating or updating an article.
type CreateArticleData struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	BodyHTML        string `json:"body_html,omitempty"`
	SummaryHTML     string `json:"summary_html,omitempty"`
	TemplateSuffix  string `json:"template_suffix,omitempty"`
	CommentsEnabled *bool  `json:"comments_enabled,omitempty"`
	Tags            string `json:"tags,omitempty"`
	Published       *bool  `json:"published,omitempty"`
	PublishedOn     string `json:"published_on,omitempty"`
}

// CreateCommentData is the payload for creating or updating a comment.
type CreateCommentData struct {
	Author    string `json:"author,omitempty"`
	Email     string `json:"email,omitempty"`
	Body      string `json:"body,omitempty"`
	Website   string `json:"website,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

// BlogListParams filter blog list requests.
type BlogListParams struct {
	ListParams
	Handle string
}

func (p *BlogListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "handle", p.Handle)
	return v
}

// ArticleListParams filter article list requests.
type ArticleListParams struct {
	ListParams
	Handle    string
	Author    string
	Tag       string
	Published *bool
}

func (p *ArticleListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "handle", p.Handle)
	addString(v, "author", p.Author)
	addString(v, "tag", p.Tag)
	addBool(v, "published", p.Published)
	return v
}

// CommentListParams filter comment list requests.
type CommentListParams struct {
	ListParams
	Published *bool
}

func (p *CommentListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addBool(v, "published", p.Published)
	return v
}

// BlogsService wraps the blog, article, and comment endpoints.
type BlogsService struct {
	client *Client
}

// List returns a page of blogs.
func (s *BlogsService) List(ctx context.Context, params *BlogListParams) ([]Blog, error) {
	var env struct {
		Blogs []Blog `json:"blogs"`
	}
	if err := s.client.Get(ctx, "/admin/blogs.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Blogs, nil
}

// Get returns a single blog by id.
func (s *BlogsService) Get(ctx context.Context, id int64) (*Blog, error) {
	var env struct {
		Blog Blog `json:"blog"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/blogs/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Blog, nil
}

// Create creates a new blog.
func (s *BlogsService) Create(ctx context.Context, data CreateBlogData) (*Blog, error) {
	var env struct {
		Blog Blog `json:"blog"`
	}
	body := map[string]CreateBlogData{"blog": data}
	if err := s.client.Post(ctx, "/admin/blogs.json", body, &env); err != nil {
		return nil, err
	}
	return &env.Blog, nil
}

// Update updates an existing blog.
func (s *BlogsService) Update(ctx context.Context, id int64, data CreateBlogData) (*Blog, error) {
	var env struct {
		Blog Blog `json:"blog"`
	}
	body := map[string]CreateBlogData{"blog": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/blogs/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.Blog, nil
}

// Delete deletes a blog.
func (s *BlogsService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/blogs/%d.json", id))
}

// ListArticles returns the articles of a blog.
func (s *BlogsService) ListArticles(ctx context.Context, blogID int64, params *ArticleListParams) ([]Article, error) {
	var env struct {
		Articles []Article `json:"articles"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles.json", blogID)
	if err := s.client.Get(ctx, path, params.values(), &env); err != nil {
		return nil, err
	}
	return env.Articles, nil
}

// GetArticle returns a single article of a blog.
func (s *BlogsService) GetArticle(ctx context.Context, blogID, id int64) (*Article, error) {
	var env struct {
		Article Article `json:"article"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d.json", blogID, id)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Article, nil
}

// CreateArticle creates an article in a blog.
func (s *BlogsService) CreateArticle(ctx context.Context, blogID int64, data CreateArticleData) (*Article, error) {
	var env struct {
		Article Article `json:"article"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles.json", blogID)
	body := map[string]CreateArticleData{"article": data}
	if err := s.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Article, nil
}

// UpdateArticle updates an article in a blog.
func (s *BlogsService) UpdateArticle(ctx context.Context, blogID, id int64, data CreateArticleData) (*Article, error) {
	var env struct {
		Article Article `json:"article"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d.json", blogID, id)
	body := map[string]CreateArticleData{"article": data}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Article, nil
}

// DeleteArticle deletes an article from a blog.
func (s *BlogsService) DeleteArticle(ctx context.Context, blogID, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/blogs/%d/articles/%d.json", blogID, id))
}

// ListComments returns the comments of an article.
func (s *BlogsService) ListComments(ctx context.Context, blogID, articleID int64, params *CommentListParams) ([]Comment, error) {
	var env struct {
		Comments []Comment `json:"comments"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d/comments.json", blogID, articleID)
	if err := s.client.Get(ctx, path, params.values(), &env); err != nil {
		return nil, err
	}
	return env.Comments, nil
}

// GetComment returns a single comment of an article.
func (s *BlogsService) GetComment(ctx context.Context, blogID, articleID, id int64) (*Comment, error) {
	var env struct {
		Comment Comment `json:"comment"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d/comments/%d.json", blogID, articleID, id)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Comment, nil
}

// CreateComment creates a comment on an article.
func (s *BlogsService) CreateComment(ctx context.Context, blogID, articleID int64, data CreateCommentData) (*Comment, error) {
	var env struct {
		Comment Comment `json:"comment"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d/comments.json", blogID, articleID)
	body := map[string]CreateCommentData{"comment": data}
	if err := s.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Comment, nil
}

// UpdateComment updates a comment on an article.
func (s *BlogsService) UpdateComment(ctx context.Context, blogID, articleID, id int64, data CreateCommentData) (*Comment, error) {
	var env struct {
		Comment Comment `json:"comment"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d/comments/%d.json", blogID, articleID, id)
	body := map[string]CreateCommentData{"comment": data}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Comment, nil
}

// DeleteComment deletes a comment from an article.
func (s *BlogsService) DeleteComment(ctx context.Context, blogID, articleID, id int64) error {
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d/comments/%d.json", blogID, articleID, id)
	return s.client.Delete(ctx, path)
}

// GetCommentCount returns the number of comments on an article.
func (s *BlogsService) GetCommentCount(ctx context.Context, blogID, articleID int64, params *CommentListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d/comments/count.json", blogID, articleID)
	if err := s.client.Get(ctx, path, params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// SpamCheck screens a comment for spam.
func (s *BlogsService) SpamCheck(ctx context.Context, blogID, articleID, commentID int64) (*SpamCheck, error) {
	var env struct {
		SpamCheck SpamCheck `json:"spam_check"`
	}
	path := fmt.Sprintf("/admin/blogs/%d/articles/%d/comments/%d/spam_check.json", blogID, articleID, commentID)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.SpamCheck, nil
}
