package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kintree/internal/access"
	"kintree/internal/database"
	"kintree/internal/model"
)

// PostgresRepository implements Repository on a pgx pool.
type PostgresRepository struct {
	db *database.Postgres
}

func NewPostgresRepository(db *database.Postgres) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// User operations

func (r *PostgresRepository) CreateUser(ctx context.Context, user model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_user (id, name, email, password_hash, email_verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.EmailVerified, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, email_verified, created_at
		 FROM tbl_user WHERE id = $1`, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.EmailVerified, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, email_verified, created_at
		 FROM tbl_user WHERE email = $1`, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.EmailVerified, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user model.User) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tbl_user SET name = $1, email = $2, password_hash = $3, email_verified = $4
		 WHERE id = $5`,
		user.Name, user.Email, user.PasswordHash, user.EmailVerified, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateUserRegistration(ctx context.Context, reg model.UserRegistration) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_user_registration (id, user_id, activation_code) VALUES ($1, $2, $3)`,
		reg.ID, reg.UserID, reg.ActivationCode)
	if err != nil {
		return fmt.Errorf("create user registration: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserRegistrationByUserID(ctx context.Context, userID uuid.UUID) (model.UserRegistration, error) {
	var reg model.UserRegistration
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, activation_code FROM tbl_user_registration WHERE user_id = $1`, userID).
		Scan(&reg.ID, &reg.UserID, &reg.ActivationCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reg, ErrUserNotFound
		}
		return reg, err
	}
	return reg, nil
}

func (r *PostgresRepository) DeleteUserRegistration(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tbl_user_registration WHERE id = $1`, id)
	return err
}

// Tree operations

func (r *PostgresRepository) CreateTree(ctx context.Context, tree model.Tree) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_tree (id, name, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		tree.ID, tree.Name, tree.OwnerID, tree.CreatedAt, tree.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create tree: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetTreeByID(ctx context.Context, id uuid.UUID) (model.Tree, error) {
	var tree model.Tree
	err := r.db.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at, updated_at FROM tbl_tree WHERE id = $1`, id).
		Scan(&tree.ID, &tree.Name, &tree.OwnerID, &tree.CreatedAt, &tree.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tree, ErrTreeNotFound
		}
		return tree, err
	}
	return tree, nil
}

func (r *PostgresRepository) UpdateTree(ctx context.Context, tree model.Tree) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tbl_tree SET name = $1, updated_at = $2 WHERE id = $3`,
		tree.Name, tree.UpdatedAt, tree.ID)
	if err != nil {
		return fmt.Errorf("update tree: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteTree(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tbl_tree WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) GetTreesByUser(ctx context.Context, userID uuid.UUID) ([]model.Tree, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.name, t.owner_id, t.created_at, t.updated_at
		 FROM tbl_tree t
		 JOIN tbl_tree_user_binding b ON b.tree_id = t.id
		 WHERE b.user_id = $1
		 ORDER BY t.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trees []model.Tree
	for rows.Next() {
		var tree model.Tree
		if err := rows.Scan(&tree.ID, &tree.Name, &tree.OwnerID, &tree.CreatedAt, &tree.UpdatedAt); err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, rows.Err()
}

// Member operations

func (r *PostgresRepository) CreateMember(ctx context.Context, member model.Member) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_member (id, tree_id, full_name, gender, birthday, status, is_root, is_divorced, deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		member.ID, member.TreeID, member.FullName, member.Gender, member.Birthday,
		member.Status, member.IsRoot, member.IsDivorced, member.Deleted, member.CreatedAt, member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetMemberByID(ctx context.Context, id uuid.UUID) (model.Member, error) {
	var m model.Member
	err := r.db.QueryRow(ctx,
		`SELECT id, tree_id, full_name, gender, birthday, status, is_root, is_divorced, deleted, created_at, updated_at
		 FROM tbl_member WHERE id = $1`, id).
		Scan(&m.ID, &m.TreeID, &m.FullName, &m.Gender, &m.Birthday, &m.Status,
			&m.IsRoot, &m.IsDivorced, &m.Deleted, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return m, ErrMemberNotFound
		}
		return m, err
	}
	return m, nil
}

func (r *PostgresRepository) UpdateMember(ctx context.Context, member model.Member) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tbl_member SET full_name = $1, gender = $2, birthday = $3, status = $4,
		 is_root = $5, is_divorced = $6, updated_at = $7 WHERE id = $8`,
		member.FullName, member.Gender, member.Birthday, member.Status,
		member.IsRoot, member.IsDivorced, member.UpdatedAt, member.ID)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SoftDeleteMember(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tbl_member SET deleted = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("soft delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRepository) GetMembersByTree(ctx context.Context, treeID uuid.UUID) ([]model.Member, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tree_id, full_name, gender, birthday, status, is_root, is_divorced, deleted, created_at, updated_at
		 FROM tbl_member WHERE tree_id = $1 ORDER BY created_at, id`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.TreeID, &m.FullName, &m.Gender, &m.Birthday, &m.Status,
			&m.IsRoot, &m.IsDivorced, &m.Deleted, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Relationship edge operations

func (r *PostgresRepository) CreateEdge(ctx context.Context, edge model.RelationshipEdge) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_relationship_edge (id, tree_id, from_member_id, from_partner_id, to_member_id, category, deleted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		edge.ID, edge.TreeID, edge.FromMemberID, edge.FromPartnerID, edge.ToMemberID,
		edge.Category, edge.Deleted, edge.CreatedAt)
	if err != nil {
		return fmt.Errorf("create edge: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetEdgeByID(ctx context.Context, id uuid.UUID) (model.RelationshipEdge, error) {
	var e model.RelationshipEdge
	err := r.db.QueryRow(ctx,
		`SELECT id, tree_id, from_member_id, from_partner_id, to_member_id, category, deleted, created_at
		 FROM tbl_relationship_edge WHERE id = $1`, id).
		Scan(&e.ID, &e.TreeID, &e.FromMemberID, &e.FromPartnerID, &e.ToMemberID, &e.Category, &e.Deleted, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, ErrEdgeNotFound
		}
		return e, err
	}
	return e, nil
}

func (r *PostgresRepository) SoftDeleteEdge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tbl_relationship_edge SET deleted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEdgeNotFound
	}
	return nil
}

func (r *PostgresRepository) GetEdgesByTree(ctx context.Context, treeID uuid.UUID) ([]model.RelationshipEdge, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tree_id, from_member_id, from_partner_id, to_member_id, category, deleted, created_at
		 FROM tbl_relationship_edge WHERE tree_id = $1 ORDER BY created_at, id`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []model.RelationshipEdge
	for rows.Next() {
		var e model.RelationshipEdge
		if err := rows.Scan(&e.ID, &e.TreeID, &e.FromMemberID, &e.FromPartnerID, &e.ToMemberID,
			&e.Category, &e.Deleted, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Tree-user binding operations

func (r *PostgresRepository) CreateTreeUserBinding(ctx context.Context, binding model.TreeUserBinding) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO tbl_tree_user_binding (tree_id, user_id, member_id, role, joined_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (tree_id, user_id) DO NOTHING`,
		binding.TreeID, binding.UserID, binding.MemberID, binding.Role, binding.JoinedAt)
	if err != nil {
		return fmt.Errorf("create binding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateBinding
	}
	return nil
}

func (r *PostgresRepository) GetTreeUserBinding(ctx context.Context, treeID, userID uuid.UUID) (model.TreeUserBinding, error) {
	var b model.TreeUserBinding
	err := r.db.QueryRow(ctx,
		`SELECT tree_id, user_id, member_id, role, joined_at
		 FROM tbl_tree_user_binding WHERE tree_id = $1 AND user_id = $2`, treeID, userID).
		Scan(&b.TreeID, &b.UserID, &b.MemberID, &b.Role, &b.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return b, access.ErrBindingNotFound
		}
		return b, err
	}
	return b, nil
}

func (r *PostgresRepository) GetBindingsByTree(ctx context.Context, treeID uuid.UUID) ([]model.TreeUserBinding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tree_id, user_id, member_id, role, joined_at
		 FROM tbl_tree_user_binding WHERE tree_id = $1 ORDER BY joined_at`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []model.TreeUserBinding
	for rows.Next() {
		var b model.TreeUserBinding
		if err := rows.Scan(&b.TreeID, &b.UserID, &b.MemberID, &b.Role, &b.JoinedAt); err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

func (r *PostgresRepository) DeleteTreeUserBinding(ctx context.Context, treeID, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM tbl_tree_user_binding WHERE tree_id = $1 AND user_id = $2`, treeID, userID)
	return err
}

// Permission grant operations

func (r *PostgresRepository) UpsertGrant(ctx context.Context, grant model.PermissionGrant) error {
	methods := make([]string, len(grant.Methods))
	for i, m := range grant.Methods {
		methods[i] = string(m)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_permission_grant (id, tree_id, member_id, feature, methods, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (tree_id, member_id, feature)
		 DO UPDATE SET methods = EXCLUDED.methods, updated_at = EXCLUDED.updated_at`,
		grant.ID, grant.TreeID, grant.MemberID, grant.Feature, methods, grant.CreatedAt, grant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetGrantsByMember(ctx context.Context, treeID, memberID uuid.UUID) ([]model.PermissionGrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tree_id, member_id, feature, methods, created_at, updated_at
		 FROM tbl_permission_grant WHERE tree_id = $1 AND member_id = $2`, treeID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

func (r *PostgresRepository) GetGrantsByTree(ctx context.Context, treeID uuid.UUID) ([]model.PermissionGrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tree_id, member_id, feature, methods, created_at, updated_at
		 FROM tbl_permission_grant WHERE tree_id = $1 ORDER BY created_at`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

func scanGrants(rows pgx.Rows) ([]model.PermissionGrant, error) {
	var grants []model.PermissionGrant
	for rows.Next() {
		var g model.PermissionGrant
		var methods []string
		if err := rows.Scan(&g.ID, &g.TreeID, &g.MemberID, &g.Feature, &methods, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.Methods = make([]model.Method, len(methods))
		for i, m := range methods {
			g.Methods[i] = model.Method(m)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *PostgresRepository) DeleteGrant(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tbl_permission_grant WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) DeleteGrantsByMember(ctx context.Context, treeID, memberID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM tbl_permission_grant WHERE tree_id = $1 AND member_id = $2`, treeID, memberID)
	return err
}

// Invitation operations

func (r *PostgresRepository) CreateInvitation(ctx context.Context, inv model.Invitation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_invitation (id, tree_id, email, role, code, invited_by, expires_at, used_at, used_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.TreeID, inv.Email, inv.Role, inv.Code, inv.InvitedBy,
		inv.ExpiresAt, inv.UsedAt, inv.UsedBy, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetInvitationByCode(ctx context.Context, code string) (model.Invitation, error) {
	var inv model.Invitation
	err := r.db.QueryRow(ctx,
		`SELECT id, tree_id, email, role, code, invited_by, expires_at, used_at, used_by, created_at
		 FROM tbl_invitation WHERE code = $1`, code).
		Scan(&inv.ID, &inv.TreeID, &inv.Email, &inv.Role, &inv.Code, &inv.InvitedBy,
			&inv.ExpiresAt, &inv.UsedAt, &inv.UsedBy, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, ErrInvitationNotFound
		}
		return inv, err
	}
	return inv, nil
}

func (r *PostgresRepository) MarkInvitationUsed(ctx context.Context, id, usedBy uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tbl_invitation SET used_at = $1, used_by = $2 WHERE id = $3 AND used_at IS NULL`,
		time.Now(), usedBy, id)
	if err != nil {
		return fmt.Errorf("mark invitation used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (r *PostgresRepository) GetInvitationsByTree(ctx context.Context, treeID uuid.UUID) ([]model.Invitation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tree_id, email, role, code, invited_by, expires_at, used_at, used_by, created_at
		 FROM tbl_invitation WHERE tree_id = $1 ORDER BY created_at DESC`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []model.Invitation
	for rows.Next() {
		var inv model.Invitation
		if err := rows.Scan(&inv.ID, &inv.TreeID, &inv.Email, &inv.Role, &inv.Code, &inv.InvitedBy,
			&inv.ExpiresAt, &inv.UsedAt, &inv.UsedBy, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// Event operations

func (r *PostgresRepository) CreateEvent(ctx context.Context, event model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_event (id, tree_id, title, description, starts_at, created_by, deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.TreeID, event.Title, event.Description, event.StartsAt,
		event.CreatedBy, event.Deleted, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetEventByID(ctx context.Context, id uuid.UUID) (model.Event, error) {
	var e model.Event
	err := r.db.QueryRow(ctx,
		`SELECT id, tree_id, title, description, starts_at, created_by, deleted, created_at, updated_at
		 FROM tbl_event WHERE id = $1`, id).
		Scan(&e.ID, &e.TreeID, &e.Title, &e.Description, &e.StartsAt, &e.CreatedBy,
			&e.Deleted, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, ErrEventNotFound
		}
		return e, err
	}
	return e, nil
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, event model.Event) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tbl_event SET title = $1, description = $2, starts_at = $3, updated_at = $4 WHERE id = $5`,
		event.Title, event.Description, event.StartsAt, event.UpdatedAt, event.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SoftDeleteEvent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tbl_event SET deleted = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("soft delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) GetEventsByTree(ctx context.Context, treeID uuid.UUID) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tree_id, title, description, starts_at, created_by, deleted, created_at, updated_at
		 FROM tbl_event WHERE tree_id = $1 ORDER BY starts_at`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.TreeID, &e.Title, &e.Description, &e.StartsAt, &e.CreatedBy,
			&e.Deleted, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Fund operations

func (r *PostgresRepository) CreateFund(ctx context.Context, fund model.Fund) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_fund (id, tree_id, name, amount, currency, created_by, deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		fund.ID, fund.TreeID, fund.Name, fund.Amount, fund.Currency,
		fund.CreatedBy, fund.Deleted, fund.CreatedAt, fund.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create fund: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetFundByID(ctx context.Context, id uuid.UUID) (model.Fund, error) {
	var f model.Fund
	err := r.db.QueryRow(ctx,
		`SELECT id, tree_id, name, amount, currency, created_by, deleted, created_at, updated_at
		 FROM tbl_fund WHERE id = $1`, id).
		Scan(&f.ID, &f.TreeID, &f.Name, &f.Amount, &f.Currency, &f.CreatedBy,
			&f.Deleted, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return f, ErrFundNotFound
		}
		return f, err
	}
	return f, nil
}

func (r *PostgresRepository) UpdateFund(ctx context.Context, fund model.Fund) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tbl_fund SET name = $1, amount = $2, currency = $3, updated_at = $4 WHERE id = $5`,
		fund.Name, fund.Amount, fund.Currency, fund.UpdatedAt, fund.ID)
	if err != nil {
		return fmt.Errorf("update fund: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SoftDeleteFund(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tbl_fund SET deleted = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("soft delete fund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFundNotFound
	}
	return nil
}

func (r *PostgresRepository) GetFundsByTree(ctx context.Context, treeID uuid.UUID) ([]model.Fund, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tree_id, name, amount, currency, created_by, deleted, created_at, updated_at
		 FROM tbl_fund WHERE tree_id = $1 ORDER BY created_at`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funds []model.Fund
	for rows.Next() {
		var f model.Fund
		if err := rows.Scan(&f.ID, &f.TreeID, &f.Name, &f.Amount, &f.Currency, &f.CreatedBy,
			&f.Deleted, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

// Audit operations

func (r *PostgresRepository) CreateAuditLog(ctx context.Context, entry model.AuditLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tbl_audit_log (id, user_id, tree_id, entity_type, entity_id, action, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.UserID, entry.TreeID, entry.EntityType, entry.EntityID,
		entry.Action, entry.Details, entry.IPAddress, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
