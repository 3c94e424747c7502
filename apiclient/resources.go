package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
)

// Kind is a content resource managed through the console.
type Kind string

const (
	KindPages         Kind = "pages"
	KindSliders       Kind = "sliders"
	KindPartners      Kind = "partners"
	KindNotifications Kind = "notifications"
	KindSettings      Kind = "settings"
	KindMenus         Kind = "menus"
	KindFAQs          Kind = "faqs"
)

// Kinds lists every resource kind in display order.
var Kinds = []Kind{
	KindPages,
	KindSliders,
	KindPartners,
	KindNotifications,
	KindSettings,
	KindMenus,
	KindFAQs,
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperrors.Wrapf(apperrors.ErrUnsupported, "unknown resource kind %q", s)
}

// Item is a single content entity. Field sets differ per kind, so the item is
// kept as decoded JSON.
type Item map[string]any

// ID returns the "id" field as a string, whether the API sent it as a string
// or a number.
func (i Item) ID() string {
	switch v := i["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Title returns the first of title, name or key that is set.
func (i Item) Title() string {
	for _, field := range []string{"title", "name", "key"} {
		if s, ok := i[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

const (
	defaultPage     = 1
	defaultPageSize = 20
)

type ListOptions struct {
	Page     int
	PageSize int
}

func (o ListOptions) normalised() ListOptions {
	if o.Page < 1 {
		o.Page = defaultPage
	}
	if o.PageSize < 1 {
		o.PageSize = defaultPageSize
	}
	return o
}

type ListResult struct {
	Items    []Item `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Pages returns the number of pages needed to show Total items.
func (r *ListResult) Pages() int {
	if r.PageSize <= 0 || r.Total <= 0 {
		return 1
	}
	return (r.Total + r.PageSize - 1) / r.PageSize
}

// List returns one page of kind.
func (c *Client) List(ctx context.Context, kind Kind, opts ListOptions) (*ListResult, error) {
	opts = opts.normalised()

	var result ListResult
	err := c.executeAPIRequest(ctx, apiRequest{
		method: http.MethodGet,
		path:   string(kind),
		queryParams: map[string]string{
			"page":     strconv.Itoa(opts.Page),
			"pageSize": strconv.Itoa(opts.PageSize),
		},
		authenticated: true,
		respObj:       &result,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	if result.Page == 0 {
		result.Page = opts.Page
	}
	if result.PageSize == 0 {
		result.PageSize = opts.PageSize
	}
	return &result, nil
}

// Get returns a single item of kind.
func (c *Client) Get(ctx context.Context, kind Kind, id string) (Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "get %s: empty id", kind)
	}

	var item Item
	err := c.executeAPIRequest(ctx, apiRequest{
		method:        http.MethodGet,
		path:          string(kind) + "/" + url.PathEscape(id),
		authenticated: true,
		respObj:       &item,
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return item, nil
}
