// Package stockweb implements C3: three independent vendor-portal scrapers
// that each produce the same (blobs, received-at) tuple as the mail
// poller. A sub-routine's failure never blocks the others (§4.3).
package stockweb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alcionai/clues"

	"github.com/floorsync/core/internal/httpx"
	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/stockmail"
)

const pollCadenceSuccess = 24 * time.Hour
const pollCadenceFailure = time.Hour

// Config carries the three vendor portals' connection details.
type Config struct {
	VendorAHost string
	VendorAUser string
	VendorAPass string

	VendorBPublicKey string

	VendorCShareURL string
}

// Poller runs the three vendor sub-routines each cycle and sends each
// successful result onto the output channel as its own Fetch.
type Poller struct {
	cfg    Config
	client *httpx.Client
}

// New constructs a Poller.
func New(cfg Config) *Poller {
	return &Poller{cfg: cfg, client: httpx.New(30 * time.Second)}
}

// Run is the infinite poll loop; each completed cycle (successful or not)
// emits whichever vendor fetches succeeded onto out.
func (p *Poller) Run(ctx context.Context, out chan<- stockmail.Fetch) {
	log := logger.Ctx(ctx)

	for {
		anyOK := p.pollOnce(ctx, out)

		sleep := pollCadenceSuccess
		if !anyOK {
			sleep = pollCadenceFailure
		}

		log.Infow("web poll cycle complete", "any_success", anyOK, "next_sleep", sleep)

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, out chan<- stockmail.Fetch) bool {
	log := logger.Ctx(ctx)

	var anyOK bool

	if f, err := p.pollVendorA(ctx); err != nil {
		log.Errorw("vendor a poll failed", "error", err)
	} else if f != nil {
		anyOK = true
		send(ctx, out, *f)
	}

	if f, err := p.pollVendorB(ctx); err != nil {
		log.Errorw("vendor b poll failed", "error", err)
	} else if f != nil {
		anyOK = true
		send(ctx, out, *f)
	}

	if f, err := p.pollVendorC(ctx); err != nil {
		log.Errorw("vendor c poll failed", "error", err)
	} else if f != nil {
		anyOK = true
		send(ctx, out, *f)
	}

	return anyOK
}

func send(ctx context.Context, out chan<- stockmail.Fetch, f stockmail.Fetch) {
	select {
	case out <- f:
	case <-ctx.Done():
	}
}

// pollVendorA authenticates via a cookie-preserving form POST, fetches the
// remains page, and downloads every xls/upload link whose text matches the
// carpet/flooring keywords.
func (p *Poller) pollVendorA(ctx context.Context) (*stockmail.Fetch, error) {
	jar, err := newCookieJar()
	if err != nil {
		return nil, clues.Wrap(err, "building cookie jar")
	}

	authClient := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	form := url.Values{"login": {p.cfg.VendorAUser}, "password": {p.cfg.VendorAPass}}

	loginReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.VendorAHost+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, clues.Wrap(err, "building vendor a login request")
	}

	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	loginResp, err := authClient.Do(loginReq)
	if err != nil {
		return nil, clues.Wrap(err, "vendor a login")
	}
	_ = loginResp.Body.Close()

	remainsResp, err := authClient.Get(p.cfg.VendorAHost + "/remains")
	if err != nil {
		return nil, clues.Wrap(err, "fetching vendor a remains page")
	}

	doc, err := goquery.NewDocumentFromReader(remainsResp.Body)
	_ = remainsResp.Body.Close()

	if err != nil {
		return nil, clues.Wrap(err, "parsing vendor a remains page")
	}

	var blobs []stockmail.Blob

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.ToLower(sel.Text())

		if !strings.Contains(href, ".xls") || !strings.Contains(href, "upload") {
			return
		}

		if !strings.Contains(text, "ковр") && !strings.Contains(text, "напол") {
			return
		}

		resp, err := authClient.Get(resolveURL(p.cfg.VendorAHost, href))
		if err != nil {
			return
		}

		data, err := httpx.ReadAll(resp)
		if err != nil {
			return
		}

		blobs = append(blobs, stockmail.Blob{Filename: href, Data: data})
	})

	if len(blobs) == 0 {
		return nil, nil
	}

	return &stockmail.Fetch{Supplier: "ortgraph", Blobs: blobs, ReceivedAt: time.Now().UTC()}, nil
}

type cloudDriveListing struct {
	Items []struct {
		File string `json:"file"`
	} `json:"items"`
}

// pollVendorB calls a public cloud-drive listing endpoint and downloads
// every listed file. Tagged "vvk" to match the upstream feed name; C4 has
// no registered parser for it; see stockparser's registry comment for why.
func (p *Poller) pollVendorB(ctx context.Context) (*stockmail.Fetch, error) {
	if p.cfg.VendorBPublicKey == "" {
		return nil, nil
	}

	listURL := "https://cloud-api.example.com/v1/public/resources?public_key=" + url.QueryEscape(p.cfg.VendorBPublicKey)

	resp, err := p.client.Get(ctx, listURL, nil)
	if err != nil {
		return nil, clues.Wrap(err, "listing vendor b cloud drive")
	}

	body, err := httpx.ReadAll(resp)
	if err != nil {
		return nil, clues.Wrap(err, "reading vendor b listing body")
	}

	var listing cloudDriveListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, clues.Wrap(err, "decoding vendor b listing")
	}

	var blobs []stockmail.Blob

	for _, item := range listing.Items {
		if item.File == "" {
			continue
		}

		fresp, err := p.client.Get(ctx, item.File, nil)
		if err != nil {
			continue
		}

		data, err := httpx.ReadAll(fresp)
		if err != nil {
			continue
		}

		blobs = append(blobs, stockmail.Blob{Filename: item.File, Data: data})
	}

	if len(blobs) == 0 {
		return nil, nil
	}

	return &stockmail.Fetch{Supplier: "vvk", Blobs: blobs, ReceivedAt: time.Now().UTC()}, nil
}

var vendorCPattern = regexp.MustCompile(`(https?://[^\s"']+/)([^\s"'/]*\d{2}[._-]\d{2}[._-]\d{2,4}[^\s"'/]*\.xlsx?)`)
var vendorCDatePattern = regexp.MustCompile(`(\d{2})[._-](\d{2})[._-](\d{2,4})`)

// pollVendorC GETs a public share page, regex-extracts a download base URL
// and a dated filename, then downloads the composed URL.
func (p *Poller) pollVendorC(ctx context.Context) (*stockmail.Fetch, error) {
	if p.cfg.VendorCShareURL == "" {
		return nil, nil
	}

	resp, err := p.client.Get(ctx, p.cfg.VendorCShareURL, nil)
	if err != nil {
		return nil, clues.Wrap(err, "fetching vendor c share page")
	}

	body, err := httpx.ReadAll(resp)
	if err != nil {
		return nil, clues.Wrap(err, "reading vendor c share page")
	}

	m := vendorCPattern.FindStringSubmatch(string(body))
	if m == nil {
		return nil, clues.New("vendor c share page had no matching download link")
	}

	downloadURL := m[1] + m[2]

	fresp, err := p.client.Get(ctx, downloadURL, nil)
	if err != nil {
		return nil, clues.Wrap(err, "downloading vendor c file")
	}

	data, err := httpx.ReadAll(fresp)
	if err != nil {
		return nil, clues.Wrap(err, "reading vendor c file body")
	}

	return &stockmail.Fetch{
		Supplier:   "sf",
		Blobs:      []stockmail.Blob{{Filename: m[2], Data: data}},
		ReceivedAt: parseVendorCDate(m[2]),
	}, nil
}

func parseVendorCDate(filename string) time.Time {
	m := vendorCDatePattern.FindStringSubmatch(filename)
	if m == nil {
		return time.Now().UTC()
	}

	for _, layout := range []string{"02.01.06", "02.01.2006"} {
		if t, err := time.Parse(layout, m[1]+"."+m[2]+"."+m[3]); err == nil {
			return t.UTC()
		}
	}

	return time.Now().UTC()
}

func resolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}

	if u.IsAbs() {
		return href
	}

	b, err := url.Parse(base)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
