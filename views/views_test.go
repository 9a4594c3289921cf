package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presslog/models"
)

func ptr(id uint) *uint { return &id }

func comment(id uint, parent *uint) models.Comment {
	return models.Comment{ID: id, ParentID: parent}
}

func countNodes(roots []*CommentNode) int {
	n := 0
	Walk(roots, func(*CommentNode) { n++ })
	return n
}

func TestBuildTree_Nesting(t *testing.T) {
	roots, dropped := BuildTree([]models.Comment{
		comment(1, nil),
		comment(2, ptr(1)),
		comment(3, nil),
		comment(4, ptr(2)),
	})

	assert.Empty(t, dropped)
	require.Len(t, roots, 2)

	assert.Equal(t, uint(1), roots[0].Comment.ID)
	assert.Equal(t, 0, roots[0].Depth)
	require.Len(t, roots[0].Children, 1)

	two := roots[0].Children[0]
	assert.Equal(t, uint(2), two.Comment.ID)
	assert.Equal(t, 1, two.Depth)
	require.Len(t, two.Children, 1)
	assert.Equal(t, uint(4), two.Children[0].Comment.ID)
	assert.Equal(t, 2, two.Children[0].Depth)

	assert.Equal(t, uint(3), roots[1].Comment.ID)
	assert.Empty(t, roots[1].Children)
}

func TestBuildTree_SiblingOrderFollowsInput(t *testing.T) {
	roots, _ := BuildTree([]models.Comment{
		comment(1, nil),
		comment(5, ptr(1)),
		comment(3, ptr(1)),
		comment(4, ptr(1)),
	})

	require.Len(t, roots, 1)
	var ids []uint
	for _, c := range roots[0].Children {
		ids = append(ids, c.Comment.ID)
	}
	assert.Equal(t, []uint{5, 3, 4}, ids)
}

func TestBuildTree_DepthIsParentPlusOne(t *testing.T) {
	input := []models.Comment{comment(1, nil)}
	for id := uint(2); id <= 50; id++ {
		input = append(input, comment(id, ptr(id/2)))
	}
	roots, dropped := BuildTree(input)

	assert.Empty(t, dropped)
	assert.Equal(t, len(input), countNodes(roots))

	var check func(n *CommentNode)
	check = func(n *CommentNode) {
		for _, c := range n.Children {
			assert.Equal(t, n.Depth+1, c.Depth)
			check(c)
		}
	}
	for _, r := range roots {
		check(r)
	}
}

func TestBuildTree_DropsOrphansAndCycles(t *testing.T) {
	roots, dropped := BuildTree([]models.Comment{
		comment(1, nil),
		comment(2, ptr(99)), // parent deleted
		comment(3, ptr(2)),
		comment(5, ptr(6)),
		comment(6, ptr(5)),
		comment(7, ptr(7)),
	})

	assert.Equal(t, 1, countNodes(roots))
	assert.ElementsMatch(t, []uint{2, 3, 5, 6, 7}, dropped)
}

func TestBuildTree_DuplicateIDs(t *testing.T) {
	roots, dropped := BuildTree([]models.Comment{
		comment(1, nil),
		comment(1, nil),
		comment(2, ptr(1)),
	})

	require.Len(t, roots, 1)
	assert.Len(t, roots[0].Children, 1)
	assert.Equal(t, []uint{1}, dropped)
}

func TestBuildTree_Empty(t *testing.T) {
	roots, dropped := BuildTree(nil)
	assert.Empty(t, roots)
	assert.Empty(t, dropped)
}

func tagCount(name string, n int) models.TagCount {
	return models.TagCount{Tag: models.Tag{Name: name, Slug: name}, Count: n}
}

func sizes(cloud []CloudTag) map[string]int {
	out := map[string]int{}
	for _, c := range cloud {
		out[c.Name] = c.Size
	}
	return out
}

func TestWeigh(t *testing.T) {
	tests := []struct {
		name     string
		tags     []models.TagCount
		expected map[string]int
	}{
		{"two tags", []models.TagCount{tagCount("a", 10), tagCount("b", 1)}, map[string]int{"a": 11, "b": 1}},
		{"single tag", []models.TagCount{tagCount("go", 3)}, map[string]int{"go": 30}},
		{"zero excluded", []models.TagCount{tagCount("a", 2), tagCount("empty", 0)}, map[string]int{"a": 20}},
		{"spread", []models.TagCount{tagCount("a", 21), tagCount("b", 11), tagCount("c", 1)}, map[string]int{"a": 10, "b": 5, "c": 1}},
		{"none", nil, map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizes(WeighWith(tt.tags, nil)))
		})
	}
}

func TestWeigh_ShufflesAllTags(t *testing.T) {
	tags := []models.TagCount{tagCount("a", 10), tagCount("b", 1), tagCount("c", 4)}

	called := false
	reverse := func(n int, swap func(i, j int)) {
		called = true
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	cloud := WeighWith(tags, reverse)

	assert.True(t, called)
	require.Len(t, cloud, 3)
	assert.Equal(t, "c", cloud[0].Name)
	assert.Equal(t, "a", cloud[2].Name)

	assert.Len(t, Weigh(tags), 3)
}

func TestMonths(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
	month := func(y int, m time.Month) time.Time { return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC) }

	earliest := day(2011, 3, 15)
	assert.Equal(t,
		[]time.Time{month(2011, 6), month(2011, 5), month(2011, 4), month(2011, 3)},
		Months(&earliest, day(2011, 6, 1)))

	dec := day(2010, 12, 31)
	assert.Equal(t,
		[]time.Time{month(2011, 1), month(2010, 12)},
		Months(&dec, day(2011, 1, 2)))

	assert.Equal(t, []time.Time{month(2011, 6)}, Months(nil, day(2011, 6, 20)))

	future := day(2012, 1, 1)
	assert.Equal(t, []time.Time{month(2011, 6)}, Months(&future, day(2011, 6, 20)))

	same := day(2011, 6, 1)
	assert.Equal(t, []time.Time{month(2011, 6)}, Months(&same, day(2011, 6, 30)))
}

func TestArchiveLinks(t *testing.T) {
	links := ArchiveLinks([]time.Time{time.Date(2011, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.Len(t, links, 1)
	assert.Equal(t, ArchiveMonth{Year: 2011, Month: 3, Label: "March 2011", URL: "/archive/2011/3/"}, links[0])
}

func TestSummary(t *testing.T) {
	s, more := Summary("intro\n<p id=\"more-12\"></p>\nrest of post", "/p/2011/3/15/hello")
	assert.True(t, more)
	assert.Equal(t, `intro<p><a class="more-link" href="/p/2011/3/15/hello#more-12">Read more...</a></p>`, s)

	s, more = Summary("whole post", "/x")
	assert.False(t, more)
	assert.Equal(t, "whole post", s)
}
