package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pantry/internal/models"
	"pantry/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_CreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.CreateUser(ctx, CreateUserInput{
		Email:    "test@EXAMPLE.com",
		Password: "testpass123456",
		Name:     "Test Name",
	})
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("testpass123456")))
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name   string
		in     CreateUserInput
		fields []string
	}{
		{"password too short", CreateUserInput{Email: "a@example.com", Password: "pw", Name: "A"}, []string{"password"}},
		{"invalid email", CreateUserInput{Email: "nope", Password: "testpass123456", Name: "A"}, []string{"email"}},
		{"missing name", CreateUserInput{Email: "b@example.com", Password: "testpass123456"}, []string{"name"}},
		{"everything wrong", CreateUserInput{}, []string{"email", "password", "name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.users.CreateUser(context.Background(), tt.in)
			assertValidationError(t, err, tt.fields...)

			n, err := f.userRepo.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := CreateUserInput{Email: "dup@example.com", Password: "testpass123456", Name: "Dup"}

	_, err := f.users.CreateUser(ctx, in)
	require.NoError(t, err)

	_, err = f.users.CreateUser(ctx, in)
	assertValidationError(t, err, "email")
}

func TestUserService_Authenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.users.CreateUser(ctx, CreateUserInput{Email: "auth@example.com", Password: "test-user-pass", Name: "Auth"})
	require.NoError(t, err)

	user, err := f.users.Authenticate(ctx, "auth@EXAMPLE.COM", "test-user-pass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	cases := map[string][2]string{
		"wrong password": {"auth@example.com", "badpass"},
		"unknown email":  {"nobody@example.com", "test-user-pass"},
		"blank password": {"auth@example.com", ""},
		"blank email":    {"", "test-user-pass"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.users.Authenticate(ctx, c[0], c[1])
			assertValidationError(t, err, "non_field_errors")
			assert.Contains(t, err.Error(), MsgInvalidCredentials)
		})
	}
}

func TestUserService_Authenticate_InactiveUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, CreateUserInput{Email: "off@example.com", Password: "test-user-pass", Name: "Off"})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(user).Update("is_active", false).Error)

	_, err = f.users.Authenticate(ctx, "off@example.com", "test-user-pass")
	assertValidationError(t, err, "non_field_errors")
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, CreateUserInput{Email: "me@example.com", Password: "testpass123456", Name: "Old"})
	require.NoError(t, err)

	updated, err := f.users.UpdateProfile(ctx, UpdateProfileInput{
		UserID:   user.ID,
		Name:     ptr("Updated name"),
		Password: ptr("newpassword123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated name", updated.Name)
	assert.Equal(t, "me@example.com", updated.Email)

	_, err = f.users.Authenticate(ctx, "me@example.com", "newpassword123")
	assert.NoError(t, err)
}

func TestUserService_UpdateProfile_RejectsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, CreateUserInput{Email: "me@example.com", Password: "testpass123456", Name: "Me"})
	require.NoError(t, err)
	_, err = f.users.CreateUser(ctx, CreateUserInput{Email: "taken@example.com", Password: "testpass123456", Name: "Other"})
	require.NoError(t, err)

	_, err = f.users.UpdateProfile(ctx, UpdateProfileInput{UserID: user.ID, Password: ptr("short")})
	assertValidationError(t, err, "password")

	_, err = f.users.UpdateProfile(ctx, UpdateProfileInput{UserID: user.ID, Email: ptr("taken@example.com")})
	assertValidationError(t, err, "email")

	got, err := f.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", got.Email)
}

func TestUserService_UploadImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, CreateUserInput{Email: "pic@example.com", Password: "testpass123456", Name: "Pic"})
	require.NoError(t, err)

	first, err := f.users.UploadImage(ctx, user.ID, UploadImageInput{Filename: "a.png", Content: testutil.TinyPNG(t, 10, 10)})
	require.NoError(t, err)
	firstPath := filepath.Join(f.images.MediaRoot(), first.Image)
	assert.FileExists(t, firstPath)
	assert.Equal(t, "/media/"+first.Image, f.users.ImageURL(first))

	// A rejected upload keeps the stored image.
	_, err = f.users.UploadImage(ctx, user.ID, UploadImageInput{Filename: "x.png", Content: []byte("notanimage")})
	assertValidationError(t, err, "image")
	got, err := f.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Image, got.Image)
	assert.FileExists(t, firstPath)

	second, err := f.users.UploadImage(ctx, user.ID, UploadImageInput{Filename: "b.jpg", Content: testutil.TinyJPEG(t, 12, 12)})
	require.NoError(t, err)
	assert.NotEqual(t, first.Image, second.Image)
	assert.FileExists(t, filepath.Join(f.images.MediaRoot(), second.Image))
	_, statErr := os.Stat(firstPath)
	assert.True(t, os.IsNotExist(statErr))
}

// mockUserRepository lets tests observe repository calls without a database.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestUserService_CreateUser_NeverWritesInvalidInput(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "a@example.com", Password: "short", Name: "A"})
	assertValidationError(t, err, "password")
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_UploadImage_RollsBackFileOnSaveFailure(t *testing.T) {
	images := NewImageService(nil)
	images.mediaRoot = t.TempDir()
	repo := new(mockUserRepository)
	repo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(models.NewInternalError(assert.AnError))

	svc := NewUserService(repo, images)
	_, err := svc.UploadImage(context.Background(), 1, UploadImageInput{Content: testutil.TinyPNG(t, 4, 4)})
	require.Error(t, err)

	entries, readErr := os.ReadDir(filepath.Join(images.mediaRoot, "uploads", "user"))
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	repo.AssertExpectations(t)
}
