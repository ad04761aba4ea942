package legislator

import "testing"

func TestDiff(t *testing.T) {
	jane := NewRecord("us-senators", Row{"Name": "Jane Doe"}, "Name", fetched)
	john := NewRecord("us-senators", Row{"Name": "John Roe"}, "Name", fetched)
	ann := NewRecord("us-senators", Row{"Name": "Ann Poe"}, "Name", fetched)

	t.Run("finds added and removed", func(t *testing.T) {
		result := Diff([]*Record{jane, john}, []*Record{john, ann})

		if len(result.Added) != 1 || result.Added[0].ID != ann.ID {
			t.Errorf("Added = %v, want Ann Poe", result.Added)
		}
		if len(result.Removed) != 1 || result.Removed[0].ID != jane.ID {
			t.Errorf("Removed = %v, want Jane Doe", result.Removed)
		}
		if result.Empty() {
			t.Error("Empty() = true, want false")
		}
	})

	t.Run("nil previous treats everything as new", func(t *testing.T) {
		result := Diff(nil, []*Record{john, ann})

		if len(result.Added) != 2 {
			t.Fatalf("expected 2 added, got %d", len(result.Added))
		}
		if result.Added[0].Name != "Ann Poe" {
			t.Errorf("expected sorted output, got %s first", result.Added[0].Name)
		}
	})

	t.Run("no changes", func(t *testing.T) {
		result := Diff([]*Record{jane}, []*Record{jane})
		if !result.Empty() {
			t.Errorf("expected no changes, got %+v", result)
		}
	})
}
