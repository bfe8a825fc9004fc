package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"abantech/internal/auth"
	"abantech/internal/ledger"
	"abantech/internal/model"
)

// Import is a snapshot converted into model entities. Skipped counts the
// documents of each collection that could not be converted.
type Import struct {
	Shops    []model.Shop
	Users    []model.User
	Revenues []model.Revenue
	Expenses []model.Expense
	Skipped  map[Collection]int
}

// Converted returns the number of entities in the import.
func (im *Import) Converted() int {
	return len(im.Shops) + len(im.Users) + len(im.Revenues) + len(im.Expenses)
}

// Convert maps legacy documents into model entities. Ids are derived from the
// legacy ids so converting the same snapshot twice gives the same entities.
// Plaintext passwords are hashed. Documents with non-canonical dates, unknown
// enum values, negative amounts, blank names or duplicate keys are skipped and
// counted. Emails and usernames share one namespace since either may be the
// owner stamped on records, so a user whose email or username is already
// taken by an earlier user is skipped too.
func Convert(snap *Snapshot) (*Import, error) {
	im := &Import{Skipped: map[Collection]int{}}

	shopIDs := map[ID]uuid.UUID{}
	shopNames := map[string]bool{}
	for _, doc := range snap.Shops {
		name := strings.TrimSpace(doc.Name)
		status := model.ShopStatus(doc.Status)
		if status == "" {
			status = model.ShopStatusActive
		}
		if name == "" || shopNames[name] || !status.Valid() {
			im.Skipped[Shops]++
			continue
		}
		shop := model.Shop{ID: entityID(Shops, doc.ID), Name: name, Status: status}
		shopNames[name] = true
		shopIDs[doc.ID] = shop.ID
		im.Shops = append(im.Shops, shop)
	}

	identifiers := map[string]bool{}
	for _, doc := range snap.Users {
		user, ok, err := convertUser(doc, shopIDs)
		if err != nil {
			return nil, err
		}
		if !ok || identifiers[user.Email] || (user.Username != "" && identifiers[user.Username]) {
			im.Skipped[Users]++
			continue
		}
		identifiers[user.Email] = true
		if user.Username != "" {
			identifiers[user.Username] = true
		}
		im.Users = append(im.Users, user)
	}

	for _, doc := range snap.Revenues {
		activity, err := model.ParseActivity(doc.Activity)
		amount := ledger.ParseAmount(string(doc.Amount))
		if err != nil || !model.ValidDate(doc.Date) || amount.IsNegative() {
			im.Skipped[Revenues]++
			continue
		}
		im.Revenues = append(im.Revenues, model.Revenue{
			ID:          entityID(Revenues, doc.ID),
			Activity:    activity,
			Amount:      amount,
			Date:        doc.Date,
			Shop:        doc.Shop,
			Username:    doc.Username,
			Description: truncate(doc.Description),
			Timestamp:   parseTimestamp(doc.Timestamp),
		})
	}

	for _, doc := range snap.Expenses {
		category, err := model.ParseCategory(doc.Category)
		amount := ledger.ParseAmount(string(doc.Amount))
		if err != nil || !model.ValidDate(doc.Date) || amount.IsNegative() {
			im.Skipped[Expenses]++
			continue
		}
		im.Expenses = append(im.Expenses, model.Expense{
			ID:          entityID(Expenses, doc.ID),
			Category:    category,
			Amount:      amount,
			Date:        doc.Date,
			Shop:        doc.Shop,
			Username:    doc.Username,
			Description: truncate(doc.Description),
			Timestamp:   parseTimestamp(doc.Timestamp),
		})
	}

	return im, nil
}

func convertUser(doc User, shopIDs map[ID]uuid.UUID) (model.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(doc.Email))
	role := model.Role(doc.Role)
	if role == "" {
		role = model.RoleUser
	}
	status := model.UserStatus(doc.Status)
	if status == "" {
		status = model.UserStatusActive
	}
	if email == "" || doc.Password == "" || !role.Valid() || !status.Valid() {
		return model.User{}, false, nil
	}

	hash := doc.Password
	if !isBcrypt(hash) {
		var err error
		if hash, err = auth.HashPassword(doc.Password); err != nil {
			return model.User{}, false, fmt.Errorf("hash password of %s: %w", email, err)
		}
	}

	user := model.User{
		ID:           entityID(Users, doc.ID),
		Email:        email,
		Username:     strings.TrimSpace(doc.Username),
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}
	if shopID, ok := shopIDs[doc.ShopID]; ok && doc.ShopID != "" {
		user.ShopID = &shopID
	}
	return user, true, nil
}

func entityID(coll Collection, id ID) uuid.UUID {
	if parsed, err := uuid.Parse(string(id)); err == nil {
		return parsed
	}
	if id == "" {
		return uuid.New()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("abantech:"+string(coll)+":"+string(id)))
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > model.MaxDescriptionLength {
		return string(r[:model.MaxDescriptionLength])
	}
	return s
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
