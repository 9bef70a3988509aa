package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// AssignmentMirror copies committed assignments into a realtime document
// store read by mobile clients. It is never authoritative.
type AssignmentMirror interface {
	MirrorAssignments(ctx context.Context, taskIDs, workerIDs []string, primaryID string) error
	RemoveAssignment(ctx context.Context, taskID, userID string) error
}

type NopMirror struct{}

func (NopMirror) MirrorAssignments(context.Context, []string, []string, string) error { return nil }
func (NopMirror) RemoveAssignment(context.Context, string, string) error               { return nil }

// FirestoreMirror keeps one document per worker at Tasks/{taskId}/Assigned/{userId}.
type FirestoreMirror struct {
	client *firestore.Client
}

func NewFirestoreMirror(client *firestore.Client) *FirestoreMirror {
	return &FirestoreMirror{client: client}
}

func (m *FirestoreMirror) assigned(taskID string) *firestore.CollectionRef {
	return m.client.Collection("Tasks").Doc(taskID).Collection("Assigned")
}

func (m *FirestoreMirror) MirrorAssignments(ctx context.Context, taskIDs, workerIDs []string, primaryID string) error {
	keep := make(map[string]struct{}, len(workerIDs))
	for _, w := range workerIDs {
		keep[w] = struct{}{}
	}
	now := time.Now()

	var errs []error
	for _, taskID := range taskIDs {
		col := m.assigned(taskID)

		iter := col.Documents(ctx)
		for {
			doc, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("list assigned docs of %s: %w", taskID, err))
				break
			}
			if _, ok := keep[doc.Ref.ID]; ok {
				continue
			}
			if _, err := doc.Ref.Delete(ctx); err != nil {
				errs = append(errs, fmt.Errorf("delete stale assigned doc %s/%s: %w", taskID, doc.Ref.ID, err))
			}
		}
		iter.Stop()

		for _, w := range workerIDs {
			_, err := col.Doc(w).Set(ctx, map[string]any{
				"taskId":    taskID,
				"userId":    w,
				"isPrimary": w == primaryID,
				"assignAt":  now,
				"update_at": now,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("set assigned doc %s/%s: %w", taskID, w, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (m *FirestoreMirror) RemoveAssignment(ctx context.Context, taskID, userID string) error {
	if _, err := m.assigned(taskID).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("delete assigned doc %s/%s: %w", taskID, userID, err)
	}
	return nil
}
