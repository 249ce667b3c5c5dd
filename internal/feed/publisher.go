package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"auth-blog/internal/storage"
)

const snapshotName = "feed.json"

// Publisher keeps a JSON snapshot of the feed in object storage.
type Publisher interface {
	Start(ctx context.Context) error
	Shutdown()
	// Enqueue asks for a republish; requests arriving while one is pending coalesce.
	Enqueue()
}

type PublisherConfig struct {
	Bucket    string
	KeyPrefix string
	Timeout   time.Duration
	Logger    logrus.FieldLogger
}

type publisher struct {
	cfg     PublisherConfig
	source  Lister
	storage storage.Service

	signal chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Posts       []Entry   `json:"posts"`
}

func NewPublisher(cfg PublisherConfig, source Lister, store storage.Service) Publisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &publisher{
		cfg:     cfg,
		source:  source,
		storage: store,
		signal:  make(chan struct{}, 1),
	}
}

func (p *publisher) Start(ctx context.Context) error {
	if p.cfg.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.loop()

	p.Enqueue()
	p.cfg.Logger.Infof("feed publisher started, target s3://%s/%s", p.cfg.Bucket, p.key())
	return nil
}

func (p *publisher) Shutdown() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.cfg.Logger.Info("feed publisher stopped")
}

func (p *publisher) Enqueue() {
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *publisher) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.signal:
			if err := p.publish(); err != nil {
				p.cfg.Logger.WithError(err).Error("publish feed snapshot")
			}
		}
	}
}

func (p *publisher) publish() error {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	posts, err := p.source.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	body, err := json.Marshal(snapshot{
		GeneratedAt: time.Now().UTC(),
		Posts:       Entries(posts),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	location, err := p.storage.Upload(ctx, bytes.NewReader(body), storage.UploadOptions{
		Bucket:       p.cfg.Bucket,
		Key:          p.key(),
		ContentType:  "application/json",
		CacheControl: "no-cache",
	})
	if err != nil {
		return err
	}

	p.cfg.Logger.WithFields(logrus.Fields{
		"location": location,
		"posts":    len(posts),
	}).Debug("feed snapshot published")
	return nil
}

func (p *publisher) key() string {
	return path.Join(strings.Trim(p.cfg.KeyPrefix, "/"), snapshotName)
}
