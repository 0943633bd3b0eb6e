package chromedp_loader

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

// injectScript appends a script element to the document head and settles once the
// element reports it is ready. Handlers are cleared after firing so the element does
// not keep the closure alive.
const injectScript = `new Promise(function (resolve, reject) {
	var head = document.getElementsByTagName('head')[0];
	var script = document.createElement('script');
	script.src = %s;
	var done = false;
	script.onload = script.onreadystatechange = function () {
		if (!done && (!this.readyState || this.readyState === 'loaded' || this.readyState === 'complete')) {
			done = true;
			script.onload = script.onreadystatechange = script.onerror = null;
			resolve(this.readyState || 'load');
		}
	};
	script.onerror = function () {
		script.onload = script.onreadystatechange = script.onerror = null;
		reject(new Error('failed to load ' + script.src));
	};
	head.appendChild(script);
})`

// ChromedpLoader loads scripts into a single headless Chrome tab, which plays the
// role of the console's live document.
type ChromedpLoader struct {
	tabCtx context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	mu     sync.Mutex
}

var _ repository.AssetLoader = (*ChromedpLoader)(nil)

// NewChromedpLoader starts a headless browser and opens pageURL (about:blank when
// empty) as the document scripts are appended to.
func NewChromedpLoader(pageURL string, logger *zap.Logger) (*ChromedpLoader, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))

	if pageURL == "" {
		pageURL = "about:blank"
	}
	if err := chromedp.Run(tabCtx, chromedp.Navigate(pageURL)); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("opening asset page %s: %w", pageURL, err)
	}

	return &ChromedpLoader{
		tabCtx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		logger: logger,
	}, nil
}

type evalResult struct {
	state string
	err   error
}

// Load injects url as a script element. The channel receives exactly one signal
// once the browser settles the element, or an error when ctx ends first.
func (l *ChromedpLoader) Load(ctx context.Context, url string) <-chan entity.LoadSignal {
	out := make(chan entity.LoadSignal, 1)

	src, err := json.Marshal(url)
	if err != nil {
		out <- entity.LoadSignal{Kind: entity.SignalError, Err: err}
		close(out)
		return out
	}

	res := make(chan evalResult, 1)
	go func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		var state string
		err := chromedp.Run(l.tabCtx, chromedp.Evaluate(fmt.Sprintf(injectScript, src), &state,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}))
		res <- evalResult{state: state, err: err}
	}()

	go func() {
		defer close(out)
		select {
		case <-ctx.Done():
			out <- entity.LoadSignal{Kind: entity.SignalError, Err: ctx.Err()}
		case r := <-res:
			switch {
			case r.err != nil:
				l.logger.Warn("script failed to load", zap.String("url", url), zap.Error(r.err))
				out <- entity.LoadSignal{Kind: entity.SignalError, Err: fmt.Errorf("loading %s: %w", url, r.err)}
			case r.state == "load":
				out <- entity.LoadSignal{Kind: entity.SignalLoad}
			default:
				out <- entity.LoadSignal{Kind: entity.SignalReadyState, State: r.state}
			}
		}
	}()
	return out
}

// Close shuts the browser down.
func (l *ChromedpLoader) Close() {
	l.cancel()
}
