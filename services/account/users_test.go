package account

import (
	"testing"

	"github.com/collegebuddy/api/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	f := setup(t)
	alice := f.register(t, "Alice", "alice@x.com", "")
	bob := f.register(t, "Bob", "bob@x.com", alice.User.ReferralCode)

	course := &model.Course{Title: "BCA", Code: "BCA", Price: decimal.NewFromInt(1000)}
	require.NoError(t, f.db.Create(course).Error)
	require.NoError(t, f.db.Create(&model.CourseEnrollment{StudentID: bob.User.ID, CourseID: course.ID, Status: model.EnrollmentActive}).Error)
	require.NoError(t, f.db.Create(&model.CourseEnrollment{StudentID: bob.User.ID, CourseID: course.ID, Status: model.EnrollmentPending}).Error)

	p, err := f.svc.Profile(f.ctx, bob.User.ID)
	require.NoError(t, err)
	require.Len(t, p.User.Enrollments, 1)
	assert.Equal(t, "BCA", p.User.Enrollments[0].Course.Code)
	assert.Equal(t, ReferralCounts{Made: 0, Got: 1}, p.ReferralsCount)

	p, err = f.svc.Profile(f.ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, ReferralCounts{Made: 1, Got: 0}, p.ReferralsCount)

	_, err = f.svc.Profile(f.ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t)
	a := f.register(t, "Alice", "alice@x.com", "")
	b := f.register(t, "Bob", "bob@x.com", "")

	name, phone := "  Alice S ", "9876543210"
	user, err := f.svc.UpdateProfile(f.ctx, a.User.ID, ProfileUpdate{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Alice S", user.Name)
	require.NotNil(t, user.Phone)
	assert.Equal(t, "9876543210", *user.Phone)

	_, err = f.svc.UpdateProfile(f.ctx, b.User.ID, ProfileUpdate{Phone: &phone})
	assert.ErrorIs(t, err, ErrPhoneTaken)

	// same phone on the same user is fine
	_, err = f.svc.UpdateProfile(f.ctx, a.User.ID, ProfileUpdate{Phone: &phone})
	assert.NoError(t, err)
}

func TestSuperAdminUserManagement(t *testing.T) {
	f := setup(t)

	admin, err := f.svc.CreateUser(f.ctx, RegisterInput{Name: "Ops", Email: "ops@x.com", Password: "password1", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, admin.IsVerified)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	_, err = f.svc.CreateUser(f.ctx, RegisterInput{Name: "X", Email: "x@x.com", Password: "password1", Role: "OWNER"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	student := f.register(t, "Stu", "stu@x.com", "")

	admins, total, err := f.svc.ListUsers(f.ctx, UserFilter{Roles: []string{model.RoleAdmin, model.RoleSuperAdmin}, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "ops@x.com", admins[0].Email)

	found, _, err := f.svc.ListUsers(f.ctx, UserFilter{Search: "STU"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	// deleting an admin downgrades
	downgraded, err := f.svc.DeleteUser(f.ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, downgraded)
	assert.Equal(t, model.RoleStudent, downgraded.Role)
	assert.Equal(t, 1, downgraded.TokenVersion)

	// deleting a user soft deletes
	gone, err := f.svc.DeleteUser(f.ctx, student.User.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	_, err = f.svc.User(f.ctx, student.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var kept model.User
	require.NoError(t, f.db.Unscoped().First(&kept, student.User.ID).Error)
	assert.True(t, kept.DeletedAt.Valid)

	// a soft deleted email stays taken
	_, err = f.svc.Register(f.ctx, RegisterInput{Name: "Stu", Email: "stu@x.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	promoted, err := f.svc.UpdateRole(f.ctx, admin.ID, model.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, promoted.Role)
	_, err = f.svc.UpdateRole(f.ctx, admin.ID, "ROOT")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
