package models

import "strings"

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleStartup  UserRole = "STARTUP"
	RoleInvestor UserRole = "INVESTOR"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStartup, RoleInvestor:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive          UserStatus = "ACTIVE"
	UserPendingApproval UserStatus = "PENDING_APPROVAL"
	UserSuspended       UserStatus = "SUSPENDED"
	UserDeleted         UserStatus = "DELETED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserPendingApproval, UserSuspended, UserDeleted:
		return true
	}
	return false
}

type StartupStage string

const (
	StageIdea    StartupStage = "IDEA"
	StageMVP     StartupStage = "MVP"
	StageSeed    StartupStage = "SEED"
	StageSeriesA StartupStage = "SERIES_A"
	StageSeriesB StartupStage = "SERIES_B"
	StageSeriesC StartupStage = "SERIES_C"
	StageGrowth  StartupStage = "GROWTH"
)

func (s StartupStage) Valid() bool {
	switch s {
	case StageIdea, StageMVP, StageSeed, StageSeriesA, StageSeriesB, StageSeriesC, StageGrowth:
		return true
	}
	return false
}

type StartupStatus string

const (
	StartupDraft     StartupStatus = "DRAFT"
	StartupPublished StartupStatus = "PUBLISHED"
	StartupArchived  StartupStatus = "ARCHIVED"
)

func (s StartupStatus) Valid() bool {
	switch s {
	case StartupDraft, StartupPublished, StartupArchived:
		return true
	}
	return false
}

type InvestorStatus string

const (
	InvestorActive   InvestorStatus = "ACTIVE"
	InvestorInactive InvestorStatus = "INACTIVE"
)

func (s InvestorStatus) Valid() bool {
	return s == InvestorActive || s == InvestorInactive
}

type OfferStatus string

const (
	OfferPending  OfferStatus = "PENDING"
	OfferAccepted OfferStatus = "ACCEPTED"
	OfferRejected OfferStatus = "REJECTED"
)

func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined.
func (s OfferStatus) Terminal() bool {
	return s == OfferAccepted || s == OfferRejected
}

type NotificationType string

const (
	NotificationOfferReceived   NotificationType = "OFFER_RECEIVED"
	NotificationOfferAccepted   NotificationType = "OFFER_ACCEPTED"
	NotificationOfferRejected   NotificationType = "OFFER_REJECTED"
	NotificationMessageReceived NotificationType = "MESSAGE_RECEIVED"
	NotificationSystem          NotificationType = "SYSTEM"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationOfferReceived, NotificationOfferAccepted, NotificationOfferRejected,
		NotificationMessageReceived, NotificationSystem:
		return true
	}
	return false
}

type FileType string

const (
	FileProfilePhoto  FileType = "PROFILE_PHOTO"
	FileStartupLogo   FileType = "STARTUP_LOGO"
	FileInvestorPhoto FileType = "INVESTOR_PHOTO"
	FilePitchDeck     FileType = "PITCH_DECK"
)

func (t FileType) Valid() bool {
	switch t {
	case FileProfilePhoto, FileStartupLogo, FileInvestorPhoto, FilePitchDeck:
		return true
	}
	return false
}

// IsImage reports whether the type only accepts image uploads.
func (t FileType) IsImage() bool {
	return t == FileProfilePhoto || t == FileStartupLogo || t == FileInvestorPhoto
}

// normalizeEnum upper-cases path or query values such as "pending".
func normalizeEnum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func ParseUserRole(s string) (UserRole, bool) {
	r := UserRole(normalizeEnum(s))
	return r, r.Valid()
}

func ParseUserStatus(s string) (UserStatus, bool) {
	v := UserStatus(normalizeEnum(s))
	return v, v.Valid()
}

func ParseStartupStatus(s string) (StartupStatus, bool) {
	v := StartupStatus(normalizeEnum(s))
	return v, v.Valid()
}

func ParseInvestorStatus(s string) (InvestorStatus, bool) {
	v := InvestorStatus(normalizeEnum(s))
	return v, v.Valid()
}

func ParseOfferStatus(s string) (OfferStatus, bool) {
	v := OfferStatus(normalizeEnum(s))
	return v, v.Valid()
}

func ParseFileType(s string) (FileType, bool) {
	v := FileType(normalizeEnum(s))
	return v, v.Valid()
}
