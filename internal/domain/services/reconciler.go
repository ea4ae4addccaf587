// Package services provides storage reconciliation
package services

import (
	"sort"
	"strings"

	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
)

// ReconcileOptions controls path comparison.
type ReconcileOptions struct {
	CaseInsensitive bool
}

// NormalizePath returns the comparison key for an object path. It trims
// surrounding whitespace and slashes and collapses repeated slashes. An empty
// result means the path is unusable.
func NormalizePath(p string, opts ReconcileOptions) string {
	p = strings.TrimSpace(p)
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	p = strings.Trim(p, "/")
	if opts.CaseInsensitive {
		p = strings.ToLower(p)
	}
	return p
}

// Reconcile classifies the union of references and objects.
// Linked = R∩S, Orphan = S−R, Missing = R−S.
func Reconcile(references, objects []string, opts ReconcileOptions) *admin.AuditReport {
	refs := make([]admin.FileReference, len(references))
	for i, r := range references {
		refs[i] = admin.FileReference{Path: r}
	}
	objs := make([]admin.StorageObject, len(objects))
	for i, o := range objects {
		objs[i] = admin.StorageObject{Path: o}
	}
	return ReconcileReferences(refs, objs, opts)
}

// ReconcileReferences is Reconcile that keeps reference owners and object
// metadata on the entries.
func ReconcileReferences(references []admin.FileReference, objects []admin.StorageObject, opts ReconcileOptions) *admin.AuditReport {
	owners := make(map[string][]admin.Owner)
	for _, ref := range references {
		key := NormalizePath(ref.Path, opts)
		if key == "" {
			continue
		}
		list := owners[key]
		if ref.OwnerType != "" && !hasOwner(list, ref.OwnerType, ref.OwnerID) {
			list = append(list, admin.Owner{Type: ref.OwnerType, ID: ref.OwnerID})
		}
		owners[key] = list
	}

	stored := make(map[string]admin.StorageObject)
	for _, obj := range objects {
		key := NormalizePath(obj.Path, opts)
		if key == "" {
			continue
		}
		if prev, ok := stored[key]; ok {
			// Duplicates after normalization are counted once with sizes
			// added; the entry keeps the first object's key.
			prev.SizeBytes += obj.SizeBytes
			stored[key] = prev
			continue
		}
		stored[key] = obj
	}

	report := &admin.AuditReport{
		Linked:  []admin.AuditEntry{},
		Orphan:  []admin.AuditEntry{},
		Missing: []admin.AuditEntry{},
	}

	for key, obj := range stored {
		entry := objectEntry(key, obj)
		if refOwners, ok := owners[key]; ok {
			entry.Status = admin.StatusLinked
			entry.Owners = sortedOwners(refOwners)
			report.Linked = append(report.Linked, entry)
			continue
		}
		entry.Status = admin.StatusOrphan
		report.Orphan = append(report.Orphan, entry)
		report.Summary.OrphanBytes += obj.SizeBytes
	}

	for key, refOwners := range owners {
		if _, ok := stored[key]; ok {
			continue
		}
		report.Missing = append(report.Missing, admin.AuditEntry{
			File:   key,
			Status: admin.StatusMissing,
			Owners: sortedOwners(refOwners),
		})
	}

	sortEntries(report.Linked)
	sortEntries(report.Orphan)
	sortEntries(report.Missing)

	report.Summary.Linked = len(report.Linked)
	report.Summary.Orphan = len(report.Orphan)
	report.Summary.Missing = len(report.Missing)
	return report
}

func objectEntry(key string, obj admin.StorageObject) admin.AuditEntry {
	size := obj.SizeBytes
	entry := admin.AuditEntry{File: key, Key: obj.Path, SizeBytes: &size}
	if obj.Folder != "" {
		folder := obj.Folder
		entry.Folder = &folder
	}
	return entry
}

func hasOwner(list []admin.Owner, ownerType, ownerID string) bool {
	for _, o := range list {
		if o.Type == ownerType && o.ID == ownerID {
			return true
		}
	}
	return false
}

func sortedOwners(list []admin.Owner) []admin.Owner {
	if len(list) == 0 {
		return nil
	}
	out := append([]admin.Owner(nil), list...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortEntries(entries []admin.AuditEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
}
