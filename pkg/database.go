package evb

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
)

func ConnectToDatabase(user, passwd, host, dbName string) (*sqlx.DB, error) {
	dbURI := fmt.Sprintf("%s:%s@(%s:3306)/%s?parseTime=true", user, passwd, host, dbName)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type channelMapRow struct {
	Board       int    `db:"board"`
	Channel     int    `db:"channel"`
	ChannelType string `db:"channel_type"`
}

// ChannelMapFromDB loads the board list valid for a run number from the run
// database. Boards are dense from 0 to the highest board seen; channels not
// present in the table stay ChannelNone.
func ChannelMapFromDB(db *sqlx.DB, runNumber int) ([]Board, error) {
	query := fmt.Sprintf(
		"SELECT board, channel, channel_type FROM ChannelMap WHERE MinRun <= %d AND MaxRun >= %d",
		runNumber, runNumber)
	rows, err := db.Queryx(query)
	if err != nil {
		return nil, &ErrChannelMap{Reason: err.Error()}
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var row channelMapRow
		if err := rows.StructScan(&row); err != nil {
			return nil, &ErrChannelMap{Reason: err.Error()}
		}
		if row.Channel < 0 || row.Channel >= ChannelsPerBoard || row.Board < 0 {
			return nil, &ErrChannelMap{Reason: fmt.Sprintf("bad board/channel pair (%d, %d)", row.Board, row.Channel)}
		}
		channelType, ok := channelTypeNames[row.ChannelType]
		if !ok {
			return nil, &ErrChannelMap{Reason: fmt.Sprintf("unknown channel type %q", row.ChannelType)}
		}
		for row.Board >= len(boards) {
			boards = append(boards, Board{})
		}
		boards[row.Board].Channels[row.Channel] = channelType
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrChannelMap{Reason: err.Error()}
	}
	return boards, nil
}

type shiftRow struct {
	Board     uint32  `db:"board"`
	Channel   uint32  `db:"channel"`
	TimeShift float64 `db:"time_shift"`
}

// ShiftsFromDB loads the per-channel time shifts valid for a run number.
func ShiftsFromDB(db *sqlx.DB, runNumber int) ([]ShiftEntry, error) {
	query := fmt.Sprintf(
		"SELECT board, channel, time_shift FROM TimeShifts WHERE MinRun <= %d AND MaxRun >= %d",
		runNumber, runNumber)
	rows, err := db.Queryx(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ShiftEntry
	for rows.Next() {
		var row shiftRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		entries = append(entries, ShiftEntry{Board: row.Board, Channel: row.Channel, TimeShift: row.TimeShift})
	}
	return entries, rows.Err()
}
