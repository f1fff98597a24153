package confluence

import "time"

// Page is a release-relevant view of a Confluence page.
type Page struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content,omitempty"`
	SpaceKey    string       `json:"spaceKey"`
	Version     int          `json:"version"`
	Created     time.Time    `json:"created,omitempty"`
	Updated     time.Time    `json:"updated,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment references a file attached to a page.
type Attachment struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	MediaType string `json:"mediaType,omitempty"`
	Download  string `json:"download,omitempty"`
}

// Wire types for the Confluence REST API.

type searchResponse struct {
	Results []wirePage `json:"results"`
	Size    int        `json:"size"`
	Limit   int        `json:"limit"`
}

type wirePage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		Number int       `json:"number"`
		When   time.Time `json:"when"`
	} `json:"version"`
	History struct {
		CreatedDate time.Time `json:"createdDate"`
	} `json:"history"`
	Metadata struct {
		Labels struct {
			Results []struct {
				Name string `json:"name"`
			} `json:"results"`
		} `json:"labels"`
	} `json:"metadata"`
	Children struct {
		Attachment struct {
			Results []wireAttachment `json:"results"`
		} `json:"attachment"`
	} `json:"children"`
}

type wireAttachment struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Metadata struct {
		MediaType string `json:"mediaType"`
	} `json:"metadata"`
	Links struct {
		Download string `json:"download"`
	} `json:"_links"`
}

func toPage(w wirePage) Page {
	page := Page{
		ID:       w.ID,
		Title:    w.Title,
		Content:  w.Body.Storage.Value,
		SpaceKey: w.Space.Key,
		Version:  w.Version.Number,
		Created:  w.History.CreatedDate,
		Updated:  w.Version.When,
	}
	for _, l := range w.Metadata.Labels.Results {
		page.Labels = append(page.Labels, l.Name)
	}
	for _, a := range w.Children.Attachment.Results {
		page.Attachments = append(page.Attachments, Attachment{
			ID:        a.ID,
			Title:     a.Title,
			MediaType: a.Metadata.MediaType,
			Download:  a.Links.Download,
		})
	}
	return page
}
