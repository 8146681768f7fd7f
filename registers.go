// registers.go - Master physical memory map for the micro:bit machine

/*
registers.go - Master Physical Memory Map

This file is the centralized reference for every region in the machine's
32-bit physical address space. Individual device implementations define
their own detailed register-offset constants in their own files; only the
region bases and sizes live here.

MEMORY MAP OVERVIEW
===================

Address      Size        Region              Implementation
---------------------------------------------------------------------------
0x00000000   0x18000     ROM (code loader)   machine_bus.go
0x00018000   0x28000     FLASH (kernel)      machine_bus.go (0x8000 sectors)
0x10000000   0x1000      FICR                nrf51_ficr.go
0x10001000   0x1000      UICR                unimp_device.go
0x20000000   16/32KB     RAM                 machine_bus.go
0x40000000   0x1000      CLOCK/POWER/MPU     nrf51_clock.go
0x40001000   0x1000      RADIO               unimp_device.go
0x40002000   0x1000      UART0               unimp_device.go
0x40003000   0x1000      SPI0/TWI0           unimp_device.go
0x40004000   0x1000      SPI1/TWI1           unimp_device.go
0x40006000   0x1000      GPIOTE              unimp_device.go
0x40007000   0x1000      ADC                 unimp_device.go
0x40008000   0x1000      TIMER0 (IRQ 8)      nrf51_timer.go
0x40009000   0x1000      TIMER1 (IRQ 9)      nrf51_timer.go
0x4000A000   0x1000      TIMER2 (IRQ 10)     nrf51_timer.go
0x4000B000   0x1000      RTC0                unimp_device.go
0x4000C000   0x1000      TEMP                unimp_device.go
0x4000D000   0x1000      RNG                 nrf51_rng.go
0x4000E000   0x1000      ECB                 unimp_device.go
0x4000F000   0x1000      AAR/CCM             unimp_device.go
0x40010000   0x1000      WDT                 unimp_device.go
0x40011000   0x1000      RTC1                unimp_device.go
0x40012000   0x1000      QDEC                unimp_device.go
0x40013000   0x1000      LPCOMP              unimp_device.go
0x40014000   0x1000      SWI                 unimp_device.go
0x4001E000   0x1000      NVMC                nrf51_nvmc.go
0x4001F000   0x1000      PPI                 unimp_device.go
0x40020000   0x1000      LED bus bridge      led_matrix.go
0x50000000   0x1000      GPIO                nrf51_gpio.go

The three timer instances are wired to CPU interrupt inputs 8, 9 and 10.
PPI event-task shortcuts between peripherals are not modeled; firmware that
relies on them will silently misbehave.

License: GPLv3 or later
*/

package main

// Boot layout.
const (
	STARTUP_ADDR = 0x00018000 // kernel load address (start of flash)
	VECTOR_SIZE  = 0xC0       // initial SP + exception vectors copied to ROM base
	NUM_IRQ      = 64

	CODE_LOADER_BASE = 0x00000000
	CODE_LOADER_SIZE = 0x00018000
	CODE_KERNEL_BASE = 0x00018000
	CODE_KERNEL_SIZE = 0x00028000
	FLASH_SEC_SIZE   = 0x00008000
	RAM_BASE         = 0x20000000
)

// Peripheral slot bases. Every APB slot is 0x1000 bytes.
const (
	PERI_SLOT_SIZE = 0x1000

	POWER_BASE  = 0x40000000
	CLOCK_BASE  = 0x40000000
	MPU_BASE    = 0x40000000
	RADIO_BASE  = 0x40001000
	UART0_BASE  = 0x40002000
	SPI0_BASE   = 0x40003000
	TWI0_BASE   = 0x40003000
	SPI1_BASE   = 0x40004000
	TWI1_BASE   = 0x40004000
	GPIOTE_BASE = 0x40006000
	ADC_BASE    = 0x40007000
	TIMER0_BASE = 0x40008000
	TIMER1_BASE = 0x40009000
	TIMER2_BASE = 0x4000A000
	RTC0_BASE   = 0x4000B000
	TEMP_BASE   = 0x4000C000
	RNG_BASE    = 0x4000D000
	ECB_BASE    = 0x4000E000
	AAR_BASE    = 0x4000F000
	CCM_BASE    = 0x4000F000
	WDT_BASE    = 0x40010000
	RTC1_BASE   = 0x40011000
	QDEC_BASE   = 0x40012000
	LPCOMP_BASE = 0x40013000
	SWI_BASE    = 0x40014000
	NVMC_BASE   = 0x4001E000
	PPI_BASE    = 0x4001F000
	GPIO_BASE   = 0x50000000
	FICR_BASE   = 0x10000000
	UICR_BASE   = 0x10001000
	LED_BASE    = 0x40020000
)

// Timer IRQ wiring: TIMER0/1/2 -> CPU interrupt inputs 8/9/10.
const (
	TIMER0_IRQ = 8
	TIMER1_IRQ = 9
	TIMER2_IRQ = 10
)
