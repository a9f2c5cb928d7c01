package post

import (
	"context"
	"testing"

	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/infrastructure/database/dbtest"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *Service
	db    *gorm.DB
	cat   product.Category
	alice user.User
	bob   user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t, &user.User{}, &product.Category{}, &Post{}, &Comment{})

	f := &fixture{svc: NewService(db, logging.Discard()), db: db}
	f.cat = product.Category{Name: "News"}
	require.NoError(t, db.Create(&f.cat).Error)
	f.alice = user.User{Email: "alice@example.com", FirstName: "Alice", IsActive: true}
	f.bob = user.User{Email: "bob@example.com", FirstName: "Bob", IsActive: true}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)
	return f
}

func (f *fixture) post(t *testing.T, author uint, title, content string) *Post {
	t.Helper()
	p, err := f.svc.CreatePost(context.Background(), author, &PostCreateRequest{Title: title, Content: content, CategoryID: f.cat.ID})
	require.NoError(t, err)
	return p
}

func TestCreateAndListPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.post(t, f.alice.ID, "Launch day", "The new Pixel ships today")
	require.NotNil(t, p.Author)
	assert.Equal(t, "Alice", p.Author.FirstName)
	require.NotNil(t, p.Category)
	f.post(t, f.bob.ID, "Repair guide", "How to swap a battery")

	_, err := f.svc.CreatePost(ctx, f.alice.ID, &PostCreateRequest{Title: "x", Content: "y", CategoryID: 999})
	assert.ErrorIs(t, err, product.ErrCategoryNotFound)

	found, meta, err := f.svc.ListPosts(ctx, &PostListRequest{Search: "PIXEL"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)
	assert.EqualValues(t, 1, meta.Total)

	byBob, _, err := f.svc.ListPosts(ctx, &PostListRequest{UserID: f.bob.ID})
	require.NoError(t, err)
	require.Len(t, byBob, 1)
	assert.Equal(t, "Repair guide", byBob[0].Title)

	all, _, err := f.svc.ListPosts(ctx, &PostListRequest{CategoryID: f.cat.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice.ID, "Launch day", "Body")

	title := "Hijacked"
	_, err := f.svc.UpdatePost(ctx, Actor{UserID: f.bob.ID}, p.ID, &PostUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotPostOwner)
	assert.Equal(t, apperr.ErrForbidden, apperr.KindOf(err))

	title = "Launch week"
	updated, err := f.svc.UpdatePost(ctx, Actor{UserID: f.alice.ID}, p.ID, &PostUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Launch week", updated.Title)

	title = "Moderated"
	updated, err = f.svc.UpdatePost(ctx, Actor{UserID: f.bob.ID, IsAdmin: true}, p.ID, &PostUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Moderated", updated.Title)

	_, prev, err := f.svc.SetPostImage(ctx, Actor{UserID: f.alice.ID}, p.ID, "uploads/post/a.png")
	require.NoError(t, err)
	assert.Empty(t, prev)
	_, _, err = f.svc.SetPostImage(ctx, Actor{UserID: f.bob.ID}, p.ID, "uploads/post/b.png")
	assert.ErrorIs(t, err, ErrNotPostOwner)

	_, err = f.svc.DeletePost(ctx, Actor{UserID: f.bob.ID}, p.ID)
	assert.ErrorIs(t, err, ErrNotPostOwner)

	_, err = f.svc.CreateComment(ctx, f.bob.ID, p.ID, &CommentRequest{Content: "Nice"})
	require.NoError(t, err)

	image, err := f.svc.DeletePost(ctx, Actor{UserID: f.alice.ID}, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/post/a.png", image)

	var comments int64
	require.NoError(t, f.db.Model(&Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)

	_, err = f.svc.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCommentThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice.ID, "Launch day", "Body")
	other := f.post(t, f.alice.ID, "Other", "Body")

	root, err := f.svc.CreateComment(ctx, f.bob.ID, p.ID, &CommentRequest{Content: "First!"})
	require.NoError(t, err)
	reply, err := f.svc.CreateComment(ctx, f.alice.ID, p.ID, &CommentRequest{Content: "Thanks", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, f.bob.ID, p.ID, &CommentRequest{Content: "You're welcome", ParentID: &reply.ID})
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, f.alice.ID, p.ID, &CommentRequest{Content: "Second thread"})
	require.NoError(t, err)

	_, err = f.svc.CreateComment(ctx, f.bob.ID, other.ID, &CommentRequest{Content: "wrong", ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrParentMismatch)
	_, err = f.svc.CreateComment(ctx, f.bob.ID, 999, &CommentRequest{Content: "lost"})
	assert.ErrorIs(t, err, ErrPostNotFound)

	tree, err := f.svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Len(t, tree[0].Replies, 1)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "You're welcome", tree[0].Replies[0].Replies[0].Content)
	assert.Empty(t, tree[1].Replies)

	got, err := f.svc.GetComment(ctx, p.ID, root.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	_, err = f.svc.GetComment(ctx, other.ID, root.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)

	_, err = f.svc.UpdateComment(ctx, f.alice.ID, p.ID, root.ID, &CommentUpdateRequest{Content: "edited"})
	assert.ErrorIs(t, err, ErrNotCommentOwner)
	edited, err := f.svc.UpdateComment(ctx, f.bob.ID, p.ID, root.ID, &CommentUpdateRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	assert.ErrorIs(t, f.svc.DeleteComment(ctx, f.alice.ID, p.ID, root.ID), ErrNotCommentOwner)
	require.NoError(t, f.svc.DeleteComment(ctx, f.bob.ID, p.ID, root.ID))

	tree, err = f.svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1, "the whole thread under the deleted comment is gone")
	assert.Equal(t, "Second thread", tree[0].Content)
}
