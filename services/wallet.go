package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/habeshagames/bingo-backend/models"
	"github.com/habeshagames/bingo-backend/utils/logger"
)

// HouseCut is the share of every pot kept by the house.
const HouseCut = 0.20

// GetOrCreatePlayer resolves a player by telegram id, creating the row
// lazily on first contact.
func (s *Service) GetOrCreatePlayer(ctx context.Context, tid int64) (*models.Player, error) {
	if tid <= 0 {
		return nil, ErrInvalidInput
	}
	var player models.Player
	err := s.db.WithContext(ctx).Where("telegram_id = ?", tid).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		player = models.Player{TelegramID: tid}
		if err := s.db.WithContext(ctx).Create(&player).Error; err != nil {
			return nil, fmt.Errorf("create player %d: %w", tid, err)
		}
		return &player, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch player %d: %w", tid, err)
	}
	return &player, nil
}

// Register creates or refreshes the player row. Username and phone are
// only written when non-empty so a bare relaunch never blanks them.
func (s *Service) Register(ctx context.Context, tid int64, username, phone string) (*models.Player, error) {
	player, err := s.GetOrCreatePlayer(ctx, tid)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if username != "" && username != player.Username {
		updates["username"] = username
	}
	if phone != "" && phone != player.Phone {
		updates["phone"] = phone
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(player).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update player %d: %w", tid, err)
		}
	}
	return player, nil
}

// UpdatePhone stores the payout contact number.
func (s *Service) UpdatePhone(ctx context.Context, tid int64, phone string) error {
	player, err := s.GetPlayer(ctx, tid)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(player).Update("phone", phone).Error
}

// GetPlayer resolves an existing player or ErrNotFound.
func (s *Service) GetPlayer(ctx context.Context, tid int64) (*models.Player, error) {
	var player models.Player
	err := s.db.WithContext(ctx).Where("telegram_id = ?", tid).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch player %d: %w", tid, err)
	}
	return &player, nil
}

// Adjust applies an externally-commanded balance change (deposit or
// withdrawal approval, admin credit, transfer leg, gift conversion).
// The engine does not validate why; it just moves the money and writes
// the ledger row atomically.
func (s *Service) Adjust(ctx context.Context, tid int64, kind models.TransactionKind, walletDelta, giftDelta float64, note string, actorTID int64) (*models.Player, error) {
	player, err := s.GetOrCreatePlayer(ctx, tid)
	if err != nil {
		return nil, err
	}
	if walletDelta == 0 && giftDelta == 0 {
		return player, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Player{}).
			Where("id = ? AND wallet + ? >= 0 AND gift + ? >= 0", player.ID, walletDelta, giftDelta).
			Updates(map[string]any{
				"wallet": gorm.Expr("wallet + ?", walletDelta),
				"gift":   gorm.Expr("gift + ?", giftDelta),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		return tx.Create(&models.Transaction{
			PlayerID: player.ID,
			Kind:     kind,
			Amount:   walletDelta + giftDelta,
			Note:     note,
			ActorTID: actorTID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).First(player, player.ID).Error; err != nil {
		return nil, fmt.Errorf("reload player %d: %w", tid, err)
	}
	return player, nil
}

// chargeStake deducts one stake from a player inside tx, gift balance
// first, wallet for the remainder. Returns ErrInsufficientBalance when
// the combined balance raced below the stake since selection time.
func (s *Service) chargeStake(tx *gorm.DB, playerID uint, stake int, gameID uint) error {
	var player models.Player
	if err := tx.First(&player, playerID).Error; err != nil {
		return err
	}

	amount := float64(stake)
	if player.Balance() < amount {
		return ErrInsufficientBalance
	}
	fromGift := player.Gift
	if fromGift > amount {
		fromGift = amount
	}
	fromWallet := amount - fromGift

	res := tx.Model(&models.Player{}).
		Where("id = ? AND gift >= ? AND wallet >= ?", playerID, fromGift, fromWallet).
		Updates(map[string]any{
			"gift":   gorm.Expr("gift - ?", fromGift),
			"wallet": gorm.Expr("wallet - ?", fromWallet),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return tx.Create(&models.Transaction{
		PlayerID: playerID,
		Kind:     models.StakeTransaction,
		Amount:   -amount,
		Note:     fmt.Sprintf("Stake %d for game #%d", stake, gameID),
	}).Error
}

// creditWin pays a pot share into the winner's wallet inside tx,
// increments their wins counter and records the ledger row.
func (s *Service) creditWin(tx *gorm.DB, playerID uint, amount float64, note string) error {
	res := tx.Model(&models.Player{}).
		Where("id = ?", playerID).
		Updates(map[string]any{
			"wallet": gorm.Expr("wallet + ?", amount),
			"wins":   gorm.Expr("wins + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return tx.Create(&models.Transaction{
		PlayerID: playerID,
		Kind:     models.WinTransaction,
		Amount:   amount,
		Note:     note,
	}).Error
}

// Transactions returns a player's ledger history, newest first.
func (s *Service) Transactions(ctx context.Context, tid int64, limit int) ([]models.Transaction, error) {
	player, err := s.GetPlayer(ctx, tid)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.Transaction
	err = s.db.WithContext(ctx).
		Where("player_id = ?", player.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions for %d: %w", tid, err)
	}
	return rows, nil
}

func logInternal(msg string, err error) {
	logger.Errorf("%s: %v", msg, err)
}
