package util

import (
	"testing"

	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

// TestIntegration_UserPasswordFlow 集成测试：用户密码完整流程
func TestIntegration_UserPasswordFlow(t *testing.T) {
	db := testutil.NewDB(t)

	password := "SecurePassword123"
	hashedPassword, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	user := models.User{
		Username:     "testuser",
		Email:        "testuser@example.com",
		PasswordHash: hashedPassword,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Create user failed: %v", err)
	}

	var dbUser models.User
	if err := db.Where("username = ?", "testuser").First(&dbUser).Error; err != nil {
		t.Fatalf("Query user failed: %v", err)
	}

	if !CheckPassword(password, dbUser.PasswordHash) {
		t.Error("CheckPassword failed: should return true for correct password")
	}
	if CheckPassword("WrongPassword", dbUser.PasswordHash) {
		t.Error("CheckPassword failed: should return false for wrong password")
	}

	// 修改密码后旧密码失效
	newHash, _ := HashPassword("NewPassword456", bcrypt.MinCost)
	db.Model(&dbUser).Update("password_hash", newHash)
	db.First(&dbUser, "id = ?", user.ID)
	if CheckPassword(password, dbUser.PasswordHash) {
		t.Error("Old password should not work after change")
	}
	if !CheckPassword("NewPassword456", dbUser.PasswordHash) {
		t.Error("New password should work after change")
	}
}

// TestIntegration_AuditLogEncryption 集成测试：审计日志加密存储
func TestIntegration_AuditLogEncryption(t *testing.T) {
	db := testutil.NewDB(t)

	hashed, _ := HashPassword("Password123", bcrypt.MinCost)
	user := models.User{Username: "audituser", Email: "audit@example.com", PasswordHash: hashed}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Create user failed: %v", err)
	}

	key := "audit-log-key"
	path := "/api/entries"
	action := `POST /api/entries {"title":"Monday","quote_of_the_day":"carpe diem"}`

	pathEnc, _ := EncryptString(key, path)
	actionEnc, _ := EncryptString(key, action)

	log := models.AuditLog{
		UserID:    &user.ID,
		PathEnc:   pathEnc,
		Method:    "POST",
		ActionEnc: actionEnc,
		Status:    201,
	}
	if err := db.Create(&log).Error; err != nil {
		t.Fatalf("Create audit log failed: %v", err)
	}

	var dbLog models.AuditLog
	if err := db.First(&dbLog, log.ID).Error; err != nil {
		t.Fatalf("Query audit log failed: %v", err)
	}

	got, err := DecryptString(key, dbLog.ActionEnc)
	if err != nil || got != action {
		t.Errorf("Decrypted action mismatch: %q, %v", got, err)
	}
	if _, err := DecryptString("wrong-key", dbLog.PathEnc); err == nil {
		t.Error("DecryptString should fail with wrong key")
	}
}
