package fetcher

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/observability"
)

// Renderer отдаёт HTML страницы после выполнения JS в headless Chrome
type Renderer struct {
	cfg    *config.Config
	logger *observability.Logger
}

func NewRenderer(cfg *config.Config, logger *observability.Logger) *Renderer {
	return &Renderer{cfg: cfg, logger: logger}
}

// Render запускает браузер на один запрос: скрейп разовый, держать процесс незачем
func (r *Renderer) Render(ctx context.Context, urlStr string) (string, error) {
	l := launcher.New().Context(ctx).Headless(true)
	if r.cfg.Rod.ChromePath != "" {
		l = l.Bin(r.cfg.Rod.ChromePath)
	}
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Warn("Failed to close browser", "error", err.Error())
		}
	}()

	page, err := browser.Timeout(r.cfg.GetRodPageTimeout()).Page(proto.TargetCreateTarget{URL: urlStr})
	if err != nil {
		return "", fmt.Errorf("open page %s: %w", urlStr, err)
	}

	if err := page.Timeout(r.cfg.GetRodWaitLoadTimeout()).WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load %s: %w", urlStr, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read rendered HTML of %s: %w", urlStr, err)
	}

	r.logger.Debug("Rendered page", "url", urlStr, "html_bytes", len(html))
	return html, nil
}
