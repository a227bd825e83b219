package executor

import (
	"context"
	"time"

	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/uri"
)

// intake runs §4.5 steps 1-2 over the action list: it converts load/observe
// actions into pending entries with a resolved locator, executes attachment
// actions synchronously against store, and appends unrecognised external
// references to ps.unavailable.
func (e *Executor) intake(ctx context.Context, ps *pendingState, actions []Action) error {
	for _, a := range actions {
		switch a.Kind {
		case ActionLoad:
			e.intakeLoad(ctx, ps, a)
		case ActionObserve:
			e.intakeObserve(ctx, ps, a)
		case ActionAttachment:
			if err := e.applyAttachment(ctx, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Executor) intakeLoad(ctx context.Context, ps *pendingState, a Action) {
	e.upsertAndLocate(ctx, ps, a.LoadURI, a.ExpandDepth, a.ExpandMode, a.LoadMode, a.Observe)
}

func (e *Executor) intakeObserve(ctx context.Context, ps *pendingState, a Action) {
	e.upsertAndLocate(ctx, ps, a.ObserveURI.Resource, 0, ExpandNone, LoadAuto, []Observable{a.ObserveURI})
}

// upsertAndLocate inserts or upgrades resource's pending entry and ensures
// it carries a connector locator, so every entry selectBatch can later pick
// up is immediately resolvable.
func (e *Executor) upsertAndLocate(ctx context.Context, ps *pendingState, resource uri.ResourceURI, expandDepth int, expandMode ExpandMode, loadMode LoadMode, observe []Observable) *pendingResult {
	r := ps.upsert(resource, expandDepth, expandMode, loadMode, observe)
	ref := uri.Reference{Kind: uri.ReferenceKnowledge, Knowledge: uri.KnowledgeURI{Resource: resource}}
	e.attachLocator(ctx, ps, r, ref)
	return r
}

// attachLocator resolves a pending entry's connector locator, per §7's
// "Unavailable for a matching realm" vs "None routes to the next connector"
// distinction. A locator already attached (from an earlier action reaching
// the same resource) is left untouched.
func (e *Executor) attachLocator(ctx context.Context, ps *pendingState, r *pendingResult, ref uri.Reference) {
	if r.resolved || r.connector != nil || r.unresolvable != nil {
		return
	}

	for _, conn := range e.connectors {
		loc, ok, err := conn.Locator(ctx, ref)
		if err != nil {
			reason := "connector reported realm unavailable: " + err.Error()
			r.unresolvable = &ResourceError{Resource: r.resource, Reason: reason}
			return
		}
		if ok {
			r.locator = loc
			r.connector = conn
			return
		}
	}
	// No connector in the chain recognises this reference at all.
	ps.unavailable = append(ps.unavailable, ref)
	r.unresolvable = &ResourceError{Resource: r.resource, Reason: "no connector recognises this resource"}
}

// applyAttachment writes a ResourcesAttachmentAction's inline payload
// straight into history, bypassing the connector chain entirely (§4.5
// step 2: write actions execute synchronously).
func (e *Executor) applyAttachment(ctx context.Context, a Action) error {
	description := ""
	if a.AttachmentDescription != nil {
		description = *a.AttachmentDescription
	} else if a.AttachmentName != nil {
		description = *a.AttachmentName
	}

	var observed history.ObservedDelta
	switch a.AttachmentPayload.Kind {
	case AttachmentPlain:
		plainURI, err := uri.ChildAffordance(a.AttachmentURI, uri.KindPlain)
		if err != nil {
			return err
		}
		observed = history.ObservedDelta{
			Kind: uri.KindPlain,
			Plain: &bundle.BundlePlain{
				URI:      plainURI,
				MimeType: a.AttachmentPayload.MimeType,
				Text:     a.AttachmentPayload.Text,
			},
		}
	default:
		fileURI, err := uri.ChildAffordance(a.AttachmentURI, uri.KindFile)
		if err != nil {
			return err
		}
		downloadURL := bundle.DownloadURL{Kind: bundle.DownloadData, Data: a.AttachmentPayload.Blob}
		if a.AttachmentPayload.Kind == AttachmentURL {
			downloadURL = bundle.DownloadURL{Kind: bundle.DownloadWeb, Web: a.AttachmentPayload.URL}
		}
		observed = history.ObservedDelta{
			Kind: uri.KindFile,
			File: &bundle.BundleFile{
				URI:         fileURI,
				MimeType:    a.AttachmentPayload.MimeType,
				Description: description,
				DownloadURL: downloadURL,
			},
		}
	}

	_, err := e.history.AppendDelta(ctx, a.AttachmentURI, history.ResourceDelta{
		RefreshedAt: time.Now(),
		Observed:    []history.ObservedDelta{observed},
	})
	return err
}
