// Package lawapi is a thin client for the e-Gov law data API. It covers the
// three calls the converter needs: resolving a law name to its ID, fetching
// the full law XML and downloading figure attachments.
package lawapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/Usuiensan/xml-markdown/config"
)

// Client talks to one API endpoint. Safe for concurrent use.
type Client struct {
	base string
	hc   *http.Client
	log  *zap.Logger
}

func New(cfg *config.APIConfig, log *zap.Logger) *Client {
	return &Client{
		base: strings.TrimSuffix(cfg.BaseURL, "/"),
		hc:   &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// FindLawID resolves a law name or law number to its ID by scanning the
// complete law list. Exact name match wins; a law number match is accepted
// when no name matches.
func (c *Client) FindLawID(ctx context.Context, name string) (string, error) {
	doc, err := c.getXML(ctx, c.base+"/lawlists/1")
	if err != nil {
		return "", fmt.Errorf("law list: %w", err)
	}

	var byNum string
	for _, info := range doc.FindElements("//LawNameListInfo") {
		id := elementText(info, "LawId")
		if id == "" {
			continue
		}
		if elementText(info, "LawName") == name {
			return id, nil
		}
		if byNum == "" && elementText(info, "LawNo") == name {
			byNum = id
		}
	}
	if byNum != "" {
		return byNum, nil
	}
	return "", fmt.Errorf("law %q not found in law list", name)
}

// FetchLawData retrieves the full law XML by ID. The returned document is the
// API envelope with the <Law> tree inside.
func (c *Client) FetchLawData(ctx context.Context, lawID string) (*etree.Document, error) {
	c.log.Info("Downloading law data", zap.String("law_id", lawID))

	doc, err := c.getXML(ctx, c.base+"/lawdata/"+url.PathEscape(lawID))
	if err != nil {
		return nil, fmt.Errorf("law data %s: %w", lawID, err)
	}
	if err := checkResult(doc); err != nil {
		return nil, fmt.Errorf("law data %s: %w", lawID, err)
	}
	return doc, nil
}

// FetchAttachment downloads one figure attachment referenced by a Fig src.
func (c *Client) FetchAttachment(ctx context.Context, lawID, src string) ([]byte, error) {
	u := c.base + "/attachment/" + url.PathEscape(lawID) + "?src=" + url.QueryEscape(src)
	c.log.Debug("Downloading attachment", zap.String("law_id", lawID), zap.String("src", src))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: %w", src, err)
	}
	return body, nil
}

func (c *Client) getXML(ctx context.Context, u string) (*etree.Document, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("malformed response XML: %w", err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// checkResult inspects the API result envelope. Code "0" means success,
// anything else carries a message.
func checkResult(doc *etree.Document) error {
	result := doc.FindElement("//Result")
	if result == nil {
		return nil
	}
	if code := elementText(result, "Code"); code != "" && code != "0" {
		msg := elementText(result, "Message")
		return fmt.Errorf("API error %s: %s", code, msg)
	}
	return nil
}

func elementText(el *etree.Element, tag string) string {
	if child := el.SelectElement(tag); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}
