// Package scrape fetches course records from the published catalog: the
// paginated course listing yields (catoid, coid) identifiers, and each
// course's detail page is extracted into a catalog.Course. The scraper is
// the data source for the requisite pipeline; it performs no parsing of
// requisite text itself.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aucplan/coursegraph/internal/catalog"
)

// CourseID identifies one course detail page in the catalog CMS.
type CourseID struct {
	CatOID string
	COID   string
}

// Options configures a Client. The zero value is completed by NewClient.
type Options struct {
	BaseURL   string
	ListURL   string // must contain a %d verb for the page number
	FirstPage int
	LastPage  int
	Delay     time.Duration
	CacheSize int
	UserAgent string
}

// DefaultOptions returns the published-catalog defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL: "https://catalog.aucegypt.edu/",
		ListURL: "https://catalog.aucegypt.edu/content.php" +
			"?catoid=40&navoid=2037&filter%%5Bitem_type%%5D=3" +
			"&filter%%5Bonly_active%%5D=1&filter%%5B3%%5D=1&filter%%5Bcpage%%5D=%d",
		FirstPage: 1,
		LastPage:  24,
		Delay:     150 * time.Millisecond,
		CacheSize: 512,
		UserAgent: "Mozilla/5.0",
	}
}

// Client scrapes the catalog. Detail pages are cached in an LRU so courses
// reachable from multiple listing pages are fetched once.
type Client struct {
	http  *http.Client
	opts  Options
	cache *lru.Cache[CourseID, catalog.Course]
}

// NewClient builds a Client with the given options, filling unset fields
// from DefaultOptions.
func NewClient(opts Options) (*Client, error) {
	defaults := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.BaseURL
	}
	if opts.ListURL == "" {
		opts.ListURL = defaults.ListURL
	}
	if opts.FirstPage == 0 {
		opts.FirstPage = defaults.FirstPage
	}
	if opts.LastPage == 0 {
		opts.LastPage = defaults.LastPage
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = defaults.CacheSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}

	cache, err := lru.New[CourseID, catalog.Course](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("scrape: create page cache: %w", err)
	}

	return &Client{
		http:  &http.Client{Timeout: 30 * time.Second},
		opts:  opts,
		cache: cache,
	}, nil
}

var (
	catOIDPattern = regexp.MustCompile(`catoid=(\d+)`)
	coIDPattern   = regexp.MustCompile(`coid=(\d+)`)
)

// CollectCourseIDs fetches every listing page and returns the unique course
// identifiers linked from them, sorted for a deterministic fetch order. A
// page that fails to fetch is skipped; the listing pass never aborts.
func (c *Client) CollectCourseIDs(ctx context.Context) ([]CourseID, error) {
	seen := make(map[CourseID]bool)
	var ids []CourseID

	for page := c.opts.FirstPage; page <= c.opts.LastPage; page++ {
		doc, err := c.fetch(ctx, fmt.Sprintf(c.opts.ListURL, page))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if !previewLink(href) {
				return
			}
			cat := catOIDPattern.FindStringSubmatch(href)
			co := coIDPattern.FindStringSubmatch(href)
			if cat == nil || co == nil {
				return
			}
			id := CourseID{CatOID: cat[1], COID: co[1]}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		})

		c.sleep(ctx)
	}

	sort.Slice(ids, func(i, j int) bool {
		if ids[i].CatOID != ids[j].CatOID {
			return ids[i].CatOID < ids[j].CatOID
		}
		return ids[i].COID < ids[j].COID
	})
	return ids, nil
}

// FetchCourse retrieves and extracts one course detail page, serving
// repeats from the LRU cache.
func (c *Client) FetchCourse(ctx context.Context, id CourseID) (catalog.Course, error) {
	if course, ok := c.cache.Get(id); ok {
		return course, nil
	}

	url := fmt.Sprintf("%spreview_course_nopop.php?catoid=%s&coid=%s",
		c.opts.BaseURL, id.CatOID, id.COID)

	doc, err := c.fetch(ctx, url)
	if err != nil {
		return catalog.Course{}, err
	}

	course := ExtractCourse(doc)
	course.URL = url
	c.cache.Add(id, course)
	return course, nil
}

// ScrapeAll runs the full pass: collect identifiers, then fetch every
// detail page. Individual fetch failures are skipped so one broken page
// never aborts the run.
func (c *Client) ScrapeAll(ctx context.Context) ([]catalog.Course, error) {
	ids, err := c.CollectCourseIDs(ctx)
	if err != nil {
		return nil, err
	}

	courses := make([]catalog.Course, 0, len(ids))
	for _, id := range ids {
		course, err := c.FetchCourse(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		courses = append(courses, course)
		c.sleep(ctx)
	}
	return courses, nil
}

func (c *Client) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: build request %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape: fetch %s: unexpected status %s", url, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape: parse %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) sleep(ctx context.Context) {
	if c.opts.Delay <= 0 {
		return
	}
	select {
	case <-time.After(c.opts.Delay):
	case <-ctx.Done():
	}
}

func previewLink(href string) bool {
	return strings.Contains(href, "preview_course_nopop.php")
}
