package utils

import (
	"context"
	"math/rand"
	"net/http"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const acceptLanguage = "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7"

const maskScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['ru-RU', 'ru', 'en-US'] });
`

// Profile is one desktop Chrome identity. Every request of a fetcher goes out
// with the same profile so the User-Agent, navigator.platform and client hints
// never disagree with each other.
type Profile struct {
	UserAgent string
	// Platform is the navigator.platform value matching UserAgent.
	Platform string
	// HintPlatform is the Sec-CH-UA-Platform value matching UserAgent.
	HintPlatform string
}

var profiles = []Profile{
	{
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		Platform:     "Win32",
		HintPlatform: `"Windows"`,
	},
	{
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		Platform:     "Win32",
		HintPlatform: `"Windows"`,
	},
	{
		UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		Platform:     "MacIntel",
		HintPlatform: `"macOS"`,
	},
	{
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		Platform:     "Linux x86_64",
		HintPlatform: `"Linux"`,
	},
}

// RandomProfile picks the identity for one fetcher.
func RandomProfile() Profile {
	return profiles[rand.Intn(len(profiles))]
}

// Headers returns the request headers of a Russian-locale visitor using p.
func (p Profile) Headers() http.Header {
	h := http.Header{}
	h.Set("User-Agent", p.UserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", acceptLanguage)
	h.Set("Sec-CH-UA-Mobile", "?0")
	h.Set("Sec-CH-UA-Platform", p.HintPlatform)
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// ChromeOpts returns the launch options for a Chrome running as p.
func (p Profile) ChromeOpts(headless bool) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "ru-RU"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(p.UserAgent),
	}

	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"), chromedp.DisableGPU)
	}

	return opts
}

// Mask prepares a new tab before navigation: it pins the UA, platform and
// language the page sees and hides the webdriver flag on every document.
func (p Profile) Mask() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		err := emulation.SetUserAgentOverride(p.UserAgent).
			WithAcceptLanguage(acceptLanguage).
			WithPlatform(p.Platform).
			Do(ctx)
		if err != nil {
			return err
		}
		_, err = page.AddScriptToEvaluateOnNewDocument(maskScript).Do(ctx)
		return err
	})
}
