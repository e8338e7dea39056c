package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// UsersStorage returns a UsersStorage
func (s *Storage) UsersStorage() *UsersStorage {
	return &UsersStorage{db: s.db, params: s.userParams, systemUser: s.systemUser}
}

// UsersStorage implements model.UsersStore using GORM
type UsersStorage struct {
	db         *gorm.DB
	params     Argon2idParams
	systemUser *model.User
}

// ensureSystemUser creates the sentinel account once, at storage
// construction, and returns it. The account cannot authenticate
// (IsActive false) and exists only to own auto-generated comments.
func ensureSystemUser(db *gorm.DB) (*model.User, error) {
	var u model.User
	err := db.Transaction(
		func(tx *gorm.DB) error {
			err := tx.Where("username = ?", model.SystemUsername).First(&u).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(err, "users: system user lookup failed")
			}
			u = model.User{
				Username:    model.SystemUsername,
				FirstName:   model.SystemUsername,
				IsStaff:     true,
				IsSuperuser: true,
				IsActive:    false,
			}
			return errors.Wrap(tx.Create(&u).Error, "users: system user create failed")
		},
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SystemUser returns the cached sentinel account
func (s *UsersStorage) SystemUser() (*model.User, error) {
	if s.systemUser == nil {
		return nil, errors.New("users: system user not initialized")
	}
	return s.systemUser, nil
}

// List returns users ordered by first name then last name, without the
// sentinel account. Superuser accounts are hidden unless requested.
func (s *UsersStorage) List(includeSuperusers bool) ([]model.User, error) {
	query := s.db.Preload("Profile").
		Where("username <> ?", model.SystemUsername).
		Order("first_name").Order("last_name")
	if !includeSuperusers {
		query = query.Where("is_superuser = ?", false)
	}
	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "users: list failed")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Get returns a user by id
func (s *UsersStorage) Get(id uint) (*model.User, error) {
	var u model.User
	if err := s.db.Preload("Profile").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("user not found")
		}
		return nil, errors.Wrap(err, "users: get failed")
	}
	u.PasswordHash = ""
	return &u, nil
}

// GetByUsername returns a user by username
func (s *UsersStorage) GetByUsername(username string) (*model.User, error) {
	var u model.User
	if err := s.db.Preload("Profile").Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("user not found: %s", username)
		}
		return nil, errors.Wrap(err, "users: get by username failed")
	}
	u.PasswordHash = ""
	return &u, nil
}

// Create creates a user together with its profile
func (s *UsersStorage) Create(req model.AddUser) (*model.User, error) {
	if req.Username == "" {
		return nil, model.InvalidRequestError("username is required")
	}
	u := model.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}
	if req.IsStaff != nil {
		u.IsStaff = *req.IsStaff
	}
	if req.IsSuperuser != nil {
		u.IsSuperuser = *req.IsSuperuser
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := hashPasswordArgon2id(*req.Password, s.params)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := tx.Create(&u).Error; err != nil {
				if isUniqueConstraintError(err) {
					return model.AlreadyExistsErrorFmt("user already exists: %s", req.Username)
				}
				return errors.Wrap(err, "users: create failed")
			}
			profile := model.Profile{UserID: u.ID}
			if req.Profile != nil {
				profile.Matricula = req.Profile.Matricula
			}
			if err := tx.Create(&profile).Error; err != nil {
				return errors.Wrap(err, "users: profile create failed")
			}
			u.Profile = &profile
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return &u, nil
}

// Update updates a user and upserts its profile
func (s *UsersStorage) Update(id uint, req model.AddUser) (*model.User, error) {
	var u model.User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("user not found")
		}
		return nil, errors.Wrap(err, "users: update lookup failed")
	}
	if req.Username != "" {
		u.Username = req.Username
	}
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	if req.IsStaff != nil {
		u.IsStaff = *req.IsStaff
	}
	if req.IsSuperuser != nil {
		u.IsSuperuser = *req.IsSuperuser
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := hashPasswordArgon2id(*req.Password, s.params)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := tx.Save(&u).Error; err != nil {
				if isUniqueConstraintError(err) {
					return model.AlreadyExistsErrorFmt("user already exists: %s", u.Username)
				}
				return errors.Wrap(err, "users: update failed")
			}
			var profile model.Profile
			if err := tx.Where("user_id = ?", u.ID).First(&profile).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.Wrap(err, "users: profile lookup failed")
				}
				profile = model.Profile{UserID: u.ID}
			}
			if req.Profile != nil {
				profile.Matricula = req.Profile.Matricula
			}
			if err := tx.Save(&profile).Error; err != nil {
				return errors.Wrap(err, "users: profile update failed")
			}
			u.Profile = &profile
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return &u, nil
}

// Delete deletes a user together with its profile and tokens
func (s *UsersStorage) Delete(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			res := tx.Delete(&model.User{}, id)
			if res.Error != nil {
				return errors.Wrap(res.Error, "users: delete failed")
			}
			if res.RowsAffected == 0 {
				return model.NotFoundError("user not found")
			}
			if err := tx.Where("user_id = ?", id).Delete(&model.Profile{}).Error; err != nil {
				return errors.Wrap(err, "users: profile delete failed")
			}
			return errors.Wrap(
				tx.Where("user_id = ?", id).Delete(&model.Token{}).Error,
				"users: token delete failed",
			)
		},
	)
}

// Authenticate validates username/password and returns the user
func (s *UsersStorage) Authenticate(username, password string) (*model.User, error) {
	var u model.User
	if err := s.db.Preload("Profile").Where("username = ?", username).First(&u).Error; err != nil {
		return nil, model.NotFoundErrorFmt("user not found: %s", username)
	}
	if !u.IsActive {
		return nil, errors.Errorf("user disabled")
	}
	ok, err := verifyPasswordArgon2id(u.PasswordHash, password)
	if err != nil || !ok {
		return nil, errors.Errorf("invalid credentials")
	}
	_ = s.db.Model(&model.User{}).Where("id = ?", u.ID).Update("last_login", time.Now()).Error
	u.PasswordHash = ""
	return &u, nil
}

// ChangePassword verifies oldPassword and stores a hash of newPassword
func (s *UsersStorage) ChangePassword(id uint, oldPassword, newPassword string) error {
	if newPassword == "" {
		return model.InvalidRequestError("new password cannot be empty")
	}
	var u model.User
	if err := s.db.First(&u, id).Error; err != nil {
		return model.NotFoundError("user not found")
	}
	ok, err := verifyPasswordArgon2id(u.PasswordHash, oldPassword)
	if err != nil || !ok {
		return model.InvalidRequestError("Senha incorreta.")
	}
	hash, err := hashPasswordArgon2id(newPassword, s.params)
	if err != nil {
		return err
	}
	return errors.Wrap(
		s.db.Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash).Error,
		"users: change password failed",
	)
}

// IssueToken creates an opaque token for the user and returns its
// cleartext value; only the sha256 digest is persisted
func (s *UsersStorage) IssueToken(userID uint) (string, error) {
	value := uuid.NewString()
	t := model.Token{UserID: userID, Digest: hashToken(value)}
	if err := s.db.Create(&t).Error; err != nil {
		return "", errors.Wrap(err, "users: token create failed")
	}
	return value, nil
}

// UserForToken resolves a cleartext token value to its user
func (s *UsersStorage) UserForToken(token string) (*model.User, error) {
	var t model.Token
	if err := s.db.Where("digest = ?", hashToken(token)).First(&t).Error; err != nil {
		return nil, model.NotFoundError("token not found")
	}
	var u model.User
	if err := s.db.Preload("Profile").First(&u, t.UserID).Error; err != nil {
		return nil, model.NotFoundError("user not found")
	}
	if !u.IsActive {
		return nil, errors.Errorf("user disabled")
	}
	u.PasswordHash = ""
	return &u, nil
}

// RevokeToken deletes the token with the given cleartext value
func (s *UsersStorage) RevokeToken(token string) error {
	return errors.Wrap(
		s.db.Where("digest = ?", hashToken(token)).Delete(&model.Token{}).Error,
		"users: token revoke failed",
	)
}

// RevokeAllTokens deletes every token of the user
func (s *UsersStorage) RevokeAllTokens(userID uint) error {
	return errors.Wrap(
		s.db.Where("user_id = ?", userID).Delete(&model.Token{}).Error,
		"users: token revoke all failed",
	)
}

// hashToken returns the hex sha256 digest of a cleartext token value
func hashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// hashPasswordArgon2id returns a PHC-formatted argon2id hash string
// Format: $argon2id$v=19$m=65536,t=1,p=4$<saltB64>$<hashB64>
func hashPasswordArgon2id(password string, p Argon2idParams) (string, error) {
	if p.Time == 0 {
		p = defaultArgon2idParams()
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen)
	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(dk)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", p.MemoryKiB, p.Time, p.Parallelism, saltB64, hashB64), nil
}

// verifyPasswordArgon2id verifies the given password against a PHC-formatted argon2id hash
func verifyPasswordArgon2id(encoded, password string) (bool, error) {
	params, salt, hash, err := parseArgon2id(encoded)
	if err != nil {
		return false, err
	}
	dk := argon2.IDKey([]byte(password), salt, params.Time, params.MemoryKiB, params.Parallelism, uint32(len(hash)))
	if subtle.ConstantTimeCompare(dk, hash) == 1 {
		return true, nil
	}
	return false, nil
}

// parseArgon2id parses a PHC-formatted argon2id hash and returns parameters, salt and hash bytes.
func parseArgon2id(encoded string) (Argon2idParams, []byte, []byte, error) {
	var out Argon2idParams
	if !strings.HasPrefix(encoded, "$argon2id$") {
		return out, nil, nil, errors.Errorf("unsupported password hash format")
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return out, nil, nil, errors.Errorf("invalid argon2id hash format")
	}
	if parts[2] != "v=19" {
		return out, nil, nil, errors.Errorf("unsupported argon2 version")
	}
	for _, kv := range strings.Split(parts[3], ",") {
		if strings.HasPrefix(kv, "m=") {
			v, err := strconv.ParseUint(strings.TrimPrefix(kv, "m="), 10, 32)
			if err != nil {
				return out, nil, nil, err
			}
			out.MemoryKiB = uint32(v)
		} else if strings.HasPrefix(kv, "t=") {
			v, err := strconv.ParseUint(strings.TrimPrefix(kv, "t="), 10, 32)
			if err != nil {
				return out, nil, nil, err
			}
			out.Time = uint32(v)
		} else if strings.HasPrefix(kv, "p=") {
			v, err := strconv.ParseUint(strings.TrimPrefix(kv, "p="), 10, 8)
			if err != nil {
				return out, nil, nil, err
			}
			out.Parallelism = uint8(v)
		}
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return out, nil, nil, err
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return out, nil, nil, err
	}
	out.SaltLen = uint32(len(salt))
	out.KeyLen = uint32(len(hash))
	return out, salt, hash, nil
}

func defaultArgon2idParams() Argon2idParams {
	return Argon2idParams{Time: 1, MemoryKiB: 64 * 1024, Parallelism: 4, KeyLen: 32, SaltLen: 16}
}
