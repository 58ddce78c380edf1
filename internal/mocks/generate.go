package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/league --output domain/league --outpkg leaguemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/asset --output domain/asset --outpkg assetmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/player --output domain/player --outpkg playermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/rebuild --output domain/rebuild --outpkg rebuildmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name LeagueSource --dir ../usecase --output usecase --outpkg usecasemock --filename league_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PlayerSource --dir ../usecase --output usecase --outpkg usecasemock --filename player_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RebuildLocker --dir ../usecase --output usecase --outpkg usecasemock --filename rebuild_locker_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name FamilyWriter --dir ../usecase --output usecase --outpkg usecasemock --filename family_writer_mock.go
