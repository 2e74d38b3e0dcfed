package pagination

import "testing"

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	cases := []struct {
		name      string
		page      int
		size      int
		want      []int
		wantTotal int
	}{
		{"first page", 0, 3, []int{1, 2, 3}, 3},
		{"middle page", 1, 3, []int{4, 5, 6}, 3},
		{"short last page", 2, 3, []int{7}, 3},
		{"past the end", 3, 3, nil, 3},
		{"far past the end", 100, 3, nil, 3},
		{"exact fit", 0, 7, []int{1, 2, 3, 4, 5, 6, 7}, 1},
		{"negative page", -1, 3, nil, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, total := Paginate(items, c.page, c.size)
			if total != c.wantTotal {
				t.Errorf("total = %d, want %d", total, c.wantTotal)
			}
			if len(got) != len(c.want) {
				t.Fatalf("page = %v, want %v", got, c.want)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("page = %v, want %v", got, c.want)
				}
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	got, total := Paginate([]string(nil), 0, 10)
	if got != nil || total != 0 {
		t.Errorf("expected empty page and zero total, got %v %d", got, total)
	}
}

func TestPaginate_CeilCount(t *testing.T) {
	cases := []struct {
		length, size, want int
	}{
		{20, 20, 1}, {21, 20, 2}, {39, 20, 2}, {40, 20, 2}, {41, 20, 3}, {1, 20, 1},
	}
	for _, c := range cases {
		items := make([]struct{}, c.length)
		if _, total := Paginate(items, 0, c.size); total != c.want {
			t.Errorf("len %d size %d: total = %d, want %d", c.length, c.size, total, c.want)
		}
	}
}
