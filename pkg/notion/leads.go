package notion

import (
	"context"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Lead database property names.
const (
	PropName     = "Name"
	PropContact  = "Contact"
	PropEmail    = "Email"
	PropPhone    = "Phone"
	PropCity     = "City"
	PropScore    = "Score"
	PropGrade    = "Grade"
	PropStatus   = "Status"
	PropAnalyzed = "Last Analyzed"
)

// StatusNew is the pipeline status given to newly created lead pages.
const StatusNew = "New"

// Lead is one visibility report request recorded in the lead database.
type Lead struct {
	BusinessName string
	FirstName    string
	Email        string
	Phone        string
	City         string
	Score        int
	Grade        string
	AnalyzedAt   time.Time
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}

// LeadProperties converts a lead to page properties. The pipeline status is
// left out; it belongs to the sales team once the page exists.
func LeadProperties(l Lead) notionapi.Properties {
	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(l.BusinessName),
		},
		PropContact: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.FirstName),
		},
		PropEmail: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(normalizeEmail(l.Email)),
		},
		PropCity: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.City),
		},
		PropScore: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(l.Score),
		},
		PropGrade: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: l.Grade},
		},
	}
	if l.Phone != "" {
		props[PropPhone] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.Phone),
		}
	}
	if !l.AnalyzedAt.IsZero() {
		d := notionapi.Date(l.AnalyzedAt)
		props[PropAnalyzed] = notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &d},
		}
	}
	return props
}

// FindLeadByEmail returns the first page whose Email matches email, or nil
// when there is none.
func FindLeadByEmail(ctx context.Context, c Client, dbID, email string) (*notionapi.Page, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: PropEmail,
			RichText: &notionapi.TextFilterCondition{Equals: normalizeEmail(email)},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "notion: find lead by email")
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// UpsertLead updates the lead page with the same email, or creates one with
// status New. It returns the page ID and whether the page was created.
func UpsertLead(ctx context.Context, c Client, dbID string, l Lead) (string, bool, error) {
	if dbID == "" {
		return "", false, eris.New("notion: lead database id is required")
	}
	if l.Email == "" {
		return "", false, eris.New("notion: lead email is required")
	}

	existing, err := FindLeadByEmail(ctx, c, dbID, l.Email)
	if err != nil {
		return "", false, err
	}

	props := LeadProperties(l)
	if existing != nil {
		pageID := string(existing.ID)
		if _, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
			return "", false, eris.Wrapf(err, "notion: update lead %s", pageID)
		}
		return pageID, false, nil
	}

	props[PropStatus] = notionapi.StatusProperty{
		Type:   notionapi.PropertyTypeStatus,
		Status: notionapi.Status{Name: StatusNew},
	}
	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: props,
	})
	if err != nil {
		return "", false, eris.Wrap(err, "notion: create lead")
	}
	return string(page.ID), true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
