// Package stockmail implements C2: the IMAP mail poller that extracts
// supplier stock-report attachments from an allow-listed set of senders.
package stockmail

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/alcionai/clues"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/floorsync/core/internal/logger"
)

const (
	pollCadence   = time.Hour
	warmStartSpan = 200
)

// Blob is a single extracted attachment, still in raw bytes; C4's parsers
// open it directly.
type Blob struct {
	Filename string
	Data     []byte
}

// Fetch is one supplier's worth of attachments plus the chosen received-at
// timestamp, the tuple C2/C3 both emit onto the fan-in channel feeding C5.
type Fetch struct {
	Supplier   string
	Blobs      []Blob
	ReceivedAt time.Time
}

// senderRule maps an allow-listed, lower-cased sender address to its
// canonical supplier tag. unnamedOK permits attachments without the
// склад/остат filename match for that one sender (per §4.2).
type senderRule struct {
	supplier  string
	unnamedOK bool
}

// AllowList is the fixed sender -> supplier mapping. It is exported so the
// daemon's config layer or tests can override it without touching poll
// logic.
var AllowList = map[string]senderRule{
	"opt@fox-kovry.ru":       {supplier: "fox"},
	"sklad@fenixgroup.ru":    {supplier: "fenix"},
	"orders@opus-carpet.ru":  {supplier: "opus"},
	"info@sf-textile.ru":     {supplier: "sf"},
	"remains@zefir-ltd.ru":   {supplier: "zefir"},
	"sales@fancy-carpets.ru": {supplier: "fancy", unnamedOK: true},
	"office@ortgraph.ru":     {supplier: "ortgraph"},
	"sklad@carpetland.ru":    {supplier: "carpetland"},
}

var attachmentMarkers = []string{"склад", "остат"}

// Config carries IMAP connection details.
type Config struct {
	Host string
	User string
	Pass string
}

// Poller owns the IMAP warm-start cursor and the poll loop.
type Poller struct {
	cfg            Config
	lastFetchedUID uint32
}

// New constructs a Poller with no cursor yet; the first Run call
// warm-starts it per §4.2.
func New(cfg Config) *Poller {
	return &Poller{cfg: cfg}
}

// Run is the infinite poll loop, handing at most one Fetch per supplier per
// cycle to out. It returns when ctx is cancelled.
func (p *Poller) Run(ctx context.Context, out chan<- Fetch) {
	log := logger.Ctx(ctx)

	for {
		if err := p.pollOnce(ctx, out); err != nil {
			log.Errorw("mail poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pollCadence):
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, out chan<- Fetch) error {
	c, err := client.DialTLS(p.cfg.Host, nil)
	if err != nil {
		return clues.Wrap(err, "dialing imap")
	}
	defer func() { _ = c.Logout() }()

	if err := c.Login(p.cfg.User, p.cfg.Pass); err != nil {
		return clues.Wrap(err, "imap login")
	}

	mbox, err := c.Select("INBOX", false)
	if err != nil {
		return clues.Wrap(err, "selecting inbox")
	}

	if p.lastFetchedUID == 0 {
		if mbox.UidNext > warmStartSpan {
			p.lastFetchedUID = mbox.UidNext - warmStartSpan
		} else {
			p.lastFetchedUID = 1
		}
	}

	tail := mbox.UidNext
	if tail <= p.lastFetchedUID+1 {
		return nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddRange(p.lastFetchedUID+1, tail-1)

	messages := make(chan *imap.Message, 16)
	section := &imap.BodySectionName{}

	done := make(chan error, 1)

	go func() {
		done <- c.UidFetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, section.FetchItem()}, messages)
	}()

	byFetch := map[string]Fetch{}

	for msg := range messages {
		p.handleMessage(ctx, msg, section, byFetch)
	}

	if err := <-done; err != nil {
		return clues.Wrap(err, "uid fetch")
	}

	p.lastFetchedUID = tail - 1

	for _, f := range byFetch {
		select {
		case out <- f:
		case <-ctx.Done():
			return nil
		}
	}

	return nil
}

func (p *Poller) handleMessage(ctx context.Context, msg *imap.Message, section *imap.BodySectionName, byFetch map[string]Fetch) {
	log := logger.Ctx(ctx)

	if msg.Envelope == nil || len(msg.Envelope.From) == 0 {
		return
	}

	addr := strings.ToLower(msg.Envelope.From[0].Address())

	rule, ok := AllowList[addr]
	if !ok {
		return
	}

	if _, already := byFetch[rule.supplier]; already {
		return
	}

	r := msg.GetBody(section)
	if r == nil {
		return
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		log.Infow("skipping unparseable message", "sender", addr, "error", err)
		return
	}

	var blobs []Blob

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}

		if err != nil {
			log.Infow("skipping unreadable message part", "sender", addr, "error", err)
			break
		}

		h, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, _ := h.Filename()
		if !matchesAttachmentFilename(filename) && !(rule.unnamedOK && filename == "") {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			log.Infow("skipping unreadable attachment", "sender", addr, "filename", filename, "error", err)
			continue
		}

		blobs = append(blobs, Blob{Filename: filename, Data: data})
	}

	if len(blobs) == 0 {
		return
	}

	byFetch[rule.supplier] = Fetch{
		Supplier:   rule.supplier,
		Blobs:      blobs,
		ReceivedAt: receivedAt(mr, msg.InternalDate),
	}
}

func matchesAttachmentFilename(filename string) bool {
	lower := strings.ToLower(filename)

	for _, marker := range attachmentMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// receivedAt follows the fallback chain in §4.2: Date header -> Received
// header -> IMAP internal-date -> now. The go-imap mail reader only
// surfaces the Date header directly; Received-header parsing would require
// walking raw headers the library doesn't expose post-parse, so that rung
// falls through to the IMAP server's own internal date, already fetched via
// FetchInternalDate, before finally giving up and using now.
func receivedAt(mr *mail.Reader, internalDate time.Time) time.Time {
	if t, err := mr.Header.Date(); err == nil && !t.IsZero() {
		return t.UTC()
	}

	if !internalDate.IsZero() {
		return internalDate.UTC()
	}

	return time.Now().UTC()
}
